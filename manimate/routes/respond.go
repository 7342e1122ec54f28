package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"manimate/manimate/utils/apperrors"
	httputils "manimate/manimate/utils/http"
)

// generic wrapper to reduce boilerplate
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			httputils.WriteError(w, r, err)
			return
		}
		httputils.WriteJSON(w, status, res)
	}
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperrors.Validation("Invalid request body")
}
