package routes

import (
	"net/http"
	"time"

	"manimate/manimate/controllers"
	"manimate/manimate/services/oauth"
	httputils "manimate/manimate/utils/http"
	"manimate/manimate/utils/logging"
	"manimate/manimate/utils/types"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const stateCookie = "oauth_state"

func AuthRoutes(ctrl *controllers.AuthController) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.SignupRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, 0, err
		}
		token, err := ctrl.Signup(r.Context(), req)
		if err != nil {
			return nil, 0, err
		}
		return types.TokenResponse{Message: "User Successfully Registered", Token: token}, http.StatusOK, nil
	}))

	login := handleJSON(func(r *http.Request) (any, int, error) {
		var req types.LoginRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, 0, err
		}
		token, err := ctrl.Login(r.Context(), req)
		if err != nil {
			return nil, 0, err
		}
		return types.TokenResponse{Message: "User Details fetched", Token: token}, http.StatusOK, nil
	})
	r.Post("/login", login)
	r.Post("/signin", login)

	return r
}

// OAuthRoutes serves /{provider} and /{provider}/callback. Failed callbacks redirect to failureURL.
func OAuthRoutes(ctrl *controllers.AuthController, failureURL string) chi.Router {
	r := chi.NewRouter()

	r.Get("/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		state, err := oauth.NewState()
		if err != nil {
			logging.ErrorLogger.Error("oauth state generation failed", zap.Error(err))
			http.Redirect(w, r, failureURL, http.StatusFound)
			return
		}
		url, err := ctrl.OAuthLoginURL(provider, state)
		if err != nil {
			httputils.WriteError(w, r, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/auth",
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	})

	r.Get("/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1, HttpOnly: true})

		cookie, err := r.Cookie(stateCookie)
		if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
			logging.AppLogger.Warn("oauth state mismatch", zap.String("provider", provider))
			http.Redirect(w, r, failureURL, http.StatusFound)
			return
		}

		token, err := ctrl.CompleteOAuth(r.Context(), provider, r.URL.Query().Get("code"))
		if err != nil {
			logging.ErrorLogger.Error("oauth login failed", zap.String("provider", provider), zap.Error(err))
			http.Redirect(w, r, failureURL, http.StatusFound)
			return
		}
		httputils.WriteJSON(w, http.StatusOK, types.TokenResponse{Message: "User fetched", Token: token})
	})

	return r
}
