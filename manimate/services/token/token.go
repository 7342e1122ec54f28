// Package token issues and verifies the bearer tokens handed out at login.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every malformed, expired or mis-signed token.
var ErrInvalidToken = errors.New("invalid token")

type Payload struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Claims struct {
	Payload
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer signs with HS256. A zero ttl issues tokens without expiry.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(p Payload) (string, error) {
	if p.UserID == "" {
		return "", errors.New("token payload requires a user id")
	}
	now := i.now()
	claims := Claims{
		Payload: p,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  p.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return &claims, nil
}

// ExtractUserID reads "Bearer <token>" and returns the embedded user id.
// ok is false when the header is missing, malformed or the token does not verify.
func (i *Issuer) ExtractUserID(authorizationHeader string) (string, bool) {
	scheme, tokenStr, found := strings.Cut(strings.TrimSpace(authorizationHeader), " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return "", false
	}
	claims, err := i.Verify(tokenStr)
	if err != nil {
		return "", false
	}
	return claims.UserID, true
}
