package routes

import (
	"net/http"

	"manimate/manimate/controllers"
	"manimate/manimate/middlewares"
	"manimate/manimate/services/token"

	"github.com/go-chi/chi/v5"
)

func UserRoutes(ctrl *controllers.UserController, issuer *token.Issuer) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(issuer))

		gr.Get("/me", handleJSON(func(r *http.Request) (any, int, error) {
			user, err := ctrl.GetProfile(r.Context(), middlewares.UserID(r.Context()))
			if err != nil {
				return nil, 0, err
			}
			return user, http.StatusOK, nil
		}))
	})

	return r
}
