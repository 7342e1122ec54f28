package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"manimate/manimate/services/oauth"
	"manimate/manimate/services/token"
	"manimate/manimate/sources/psql/dao"
	"manimate/manimate/sources/psql/models"
	"manimate/manimate/utils/apperrors"
	"manimate/manimate/utils/logging"
	"manimate/manimate/utils/types"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	userDAO   *dao.UserDAO
	issuer    *token.Issuer
	verifiers *oauth.Registry
}

func NewAuthController(userDAO *dao.UserDAO, issuer *token.Issuer, verifiers *oauth.Registry) *AuthController {
	return &AuthController{
		userDAO:   userDAO,
		issuer:    issuer,
		verifiers: verifiers,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *AuthController) issue(user *models.User) (string, error) {
	tok, err := c.issuer.Issue(token.Payload{
		UserID:    user.ID.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		return "", apperrors.Internal("Internal Server Error", err)
	}
	return tok, nil
}

// Signup registers a credentials account and returns its token.
func (c *AuthController) Signup(ctx context.Context, req types.SignupRequest) (string, error) {
	defer logging.LogDuration(ctx, "auth_signup")()

	email := normalizeEmail(req.Email)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if email == "" || strings.TrimSpace(req.Password) == "" || firstName == "" {
		return "", apperrors.Validation("Important Field/s empty")
	}

	existing, err := c.userDAO.GetUserByEmail(ctx, email)
	if err != nil {
		return "", apperrors.Internal("Error Registering User", err)
	}
	if existing != nil {
		return "", apperrors.Conflict("User Already Exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.Validation("Password is too long")
		}
		return "", apperrors.Internal("Error Registering User", err)
	}
	hashStr := string(hash)

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: &hashStr,
		AuthMethod:   models.AuthMethodCredentials,
	}
	if err := c.userDAO.CreateUser(ctx, user); err != nil {
		if errors.Is(err, dao.ErrDuplicate) {
			return "", apperrors.Conflict("User Already Exists")
		}
		return "", apperrors.Internal("Error Registering User", err)
	}

	logging.AppLogger.Info("user registered", zap.String("user_id", user.ID.String()))
	return c.issue(user)
}

// Login checks a credentials account and returns a fresh token.
func (c *AuthController) Login(ctx context.Context, req types.LoginRequest) (string, error) {
	defer logging.LogDuration(ctx, "auth_login")()

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return "", apperrors.Validation("Email and password are required")
	}

	user, err := c.userDAO.GetUserByEmail(ctx, email)
	if err != nil {
		return "", apperrors.Internal("Internal Server Error", err)
	}
	if user == nil {
		return "", apperrors.NotFound("User not found").AsMessage()
	}
	if user.AuthMethod != models.AuthMethodCredentials {
		return "", apperrors.MethodMismatch(fmt.Sprintf("Use %s to sign in.", user.AuthMethod))
	}
	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return "", apperrors.InvalidCredentials("Invalid password")
	}

	return c.issue(user)
}

// ExternalLogin finds or creates the account behind a verified provider profile.
func (c *AuthController) ExternalLogin(ctx context.Context, profile oauth.Profile) (*models.User, error) {
	defer logging.LogDuration(ctx, "auth_external_login")()

	method := models.AuthMethod(profile.Provider)
	if method != models.AuthMethodGoogle && method != models.AuthMethodGitHub {
		return nil, apperrors.NotFound("Unsupported provider")
	}
	if profile.ExternalID == "" {
		return nil, apperrors.Validation("Provider profile has no id")
	}

	user, err := c.userDAO.GetUserByExternalID(ctx, method, profile.ExternalID)
	if err != nil {
		return nil, apperrors.Internal("Internal Server Error", err)
	}
	if user != nil {
		return user, nil
	}

	email := fmt.Sprintf("user-%s@%s.com", profile.ExternalID, profile.Provider)
	if profile.Email != nil && strings.TrimSpace(*profile.Email) != "" {
		email = *profile.Email
	}
	email = normalizeEmail(email)

	existing, err := c.userDAO.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal("Internal Server Error", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("User Already Exists")
	}

	externalID := profile.ExternalID
	user = &models.User{
		FirstName:  firstOf(profile.GivenName, profile.DisplayName, profile.Login),
		LastName:   firstOf(profile.FamilyName),
		Email:      email,
		AuthMethod: method,
		ExternalID: &externalID,
	}
	if user.FirstName == "" {
		user.FirstName = "User"
	}

	if err := c.userDAO.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, dao.ErrDuplicate) {
			return nil, apperrors.Internal("Internal Server Error", err)
		}
		// A concurrent callback for the same account may have won the insert.
		raced, lookupErr := c.userDAO.GetUserByExternalID(ctx, method, profile.ExternalID)
		if lookupErr != nil {
			return nil, apperrors.Internal("Internal Server Error", lookupErr)
		}
		if raced == nil {
			return nil, apperrors.Conflict("User Already Exists")
		}
		return raced, nil
	}

	logging.AppLogger.Info("user registered via provider",
		zap.String("user_id", user.ID.String()), zap.String("provider", profile.Provider))
	return user, nil
}

func firstOf(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

// OAuthLoginURL is the provider consent page for the given state.
func (c *AuthController) OAuthLoginURL(provider, state string) (string, error) {
	v, err := c.verifiers.Get(provider)
	if err != nil {
		return "", apperrors.NotFound("Unsupported provider")
	}
	return v.AuthCodeURL(state), nil
}

// CompleteOAuth exchanges the callback code and returns a token for the matching account.
func (c *AuthController) CompleteOAuth(ctx context.Context, provider, code string) (string, error) {
	v, err := c.verifiers.Get(provider)
	if err != nil {
		return "", apperrors.NotFound("Unsupported provider")
	}
	if code == "" {
		return "", apperrors.Validation("Authorization code is required")
	}

	profile, err := v.Verify(ctx, code)
	if err != nil {
		return "", apperrors.Unauthorized("Unauthorized").WithCause(err)
	}
	user, err := c.ExternalLogin(ctx, *profile)
	if err != nil {
		return "", err
	}
	return c.issue(user)
}
