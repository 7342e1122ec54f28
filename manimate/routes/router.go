package routes

import (
	"net/http"
	"time"

	"manimate/manimate/controllers"
	"manimate/manimate/services/token"
	"manimate/manimate/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth            *controllers.AuthController
	User            *controllers.UserController
	Chat            *controllers.ChatController
	Health          *controllers.HealthController
	Issuer          *token.Issuer
	OAuthFailureURL string
	RequestTimeout  time.Duration

	// WSOriginPatterns are the cross-origin hosts allowed on the websocket.
	WSOriginPatterns []string
}

func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestMiddleware)
	r.Use(middleware.Recoverer)
	if h.RequestTimeout > 0 {
		r.Use(middleware.Timeout(h.RequestTimeout))
	}

	r.Mount("/health", HealthRoutes(h.Health))
	r.Mount("/api/auth", AuthRoutes(h.Auth))
	r.Mount("/auth", OAuthRoutes(h.Auth, h.OAuthFailureURL))
	r.Mount("/api/users", UserRoutes(h.User, h.Issuer))
	r.Mount("/api/generate/chat", ChatRoutes(h.Chat, h.Issuer, h.WSOriginPatterns))

	return r
}
