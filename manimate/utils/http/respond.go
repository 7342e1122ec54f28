package httputils

import (
	"encoding/json"
	"net/http"

	"manimate/manimate/utils/apperrors"
	"manimate/manimate/utils/logging"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps err to its status and a {"error"} or {"message"} body.
// 5xx causes go to the error log; clients only see the generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.From(err)
	status := appErr.Kind.Status()
	if status >= http.StatusInternalServerError {
		logging.ErrorLogger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.String("kind", appErr.Kind.String()),
			zap.Error(appErr))
	}
	key := appErr.Key
	if key == "" {
		key = "error"
	}
	WriteJSON(w, status, map[string]string{key: appErr.Message})
}
