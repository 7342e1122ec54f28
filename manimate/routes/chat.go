package routes

import (
	"context"
	"net/http"
	"time"

	"manimate/manimate/controllers"
	"manimate/manimate/middlewares"
	"manimate/manimate/services/token"
	"manimate/manimate/utils/apperrors"
	"manimate/manimate/utils/logging"
	"manimate/manimate/utils/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ChatRoutes serves /api/generate/chat. originPatterns lists the cross-origin hosts
// accepted on the websocket; same-origin upgrades are always accepted.
func ChatRoutes(ctrl *controllers.ChatController, issuer *token.Issuer, originPatterns []string) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(issuer))

		gr.Post("/new", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.CreateChatRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, 0, err
			}
			session, err := ctrl.CreateSession(r.Context(), middlewares.UserID(r.Context()), req.Title)
			if err != nil {
				return nil, 0, err
			}
			return types.CreateChatResponse{
				Message:   "Chat created successfully",
				SessionID: session.ID.String(),
			}, http.StatusCreated, nil
		}))

		gr.Post("/new/prompt", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.ChatRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, 0, err
			}
			res, err := ctrl.GenerateInitialResponse(r.Context(), middlewares.UserID(r.Context()), req.SessionID, req.Prompt)
			if err != nil {
				return nil, 0, err
			}
			return types.InitialChatResponse{
				Message:   "Chat created successfully",
				Response:  res.Script,
				SessionID: res.SessionID,
			}, http.StatusCreated, nil
		}))

		gr.Post("/followup", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.ChatRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, 0, err
			}
			sessionID := r.URL.Query().Get("sessionId")
			if sessionID == "" {
				sessionID = req.SessionID
			}
			result, err := ctrl.GenerateFollowUp(r.Context(), middlewares.UserID(r.Context()), sessionID, req.Prompt)
			if err != nil {
				return nil, 0, err
			}
			return types.FollowUpResponse{Result: result}, http.StatusOK, nil
		}))

		gr.Get("/sessions", handleJSON(func(r *http.Request) (any, int, error) {
			sessions, err := ctrl.ListSessions(r.Context(), middlewares.UserID(r.Context()))
			if err != nil {
				return nil, 0, err
			}
			return sessions, http.StatusOK, nil
		}))

		gr.Get("/{sessionId}/messages", handleJSON(func(r *http.Request) (any, int, error) {
			msgs, err := ctrl.SessionMessages(r.Context(), middlewares.UserID(r.Context()), chi.URLParam(r, "sessionId"))
			if err != nil {
				return nil, 0, err
			}
			return msgs, http.StatusOK, nil
		}))
	})

	// The token travels in the first frame since browsers cannot set headers on websocket upgrades.
	r.HandleFunc("/followup/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		var input types.StreamInit
		err = wsjson.Read(readCtx, conn, &input)
		cancel()
		if err != nil {
			wsjson.Write(ctx, conn, types.StreamFrame{Type: "error", Error: "invalid json"})
			conn.Close(websocket.StatusUnsupportedData, "invalid json")
			return
		}

		userID, ok := issuer.ExtractUserID("Bearer " + input.Token)
		if !ok {
			wsjson.Write(ctx, conn, types.StreamFrame{Type: "error", Error: "Unauthorized"})
			conn.Close(websocket.StatusPolicyViolation, "invalid token")
			return
		}

		_, err = ctrl.GenerateFollowUpStream(ctx, userID, input.SessionID, input.Prompt, func(chunk string) error {
			return wsjson.Write(ctx, conn, types.StreamFrame{Type: "chunk", Text: chunk})
		})
		if err != nil {
			appErr := apperrors.From(err)
			if appErr.Kind.Status() >= http.StatusInternalServerError {
				logging.ErrorLogger.Error("followup stream failed", zap.Error(appErr))
			}
			wsjson.Write(ctx, conn, types.StreamFrame{Type: "error", Error: appErr.Message})
			conn.Close(websocket.StatusInternalError, "stream error")
			return
		}

		wsjson.Write(ctx, conn, types.StreamFrame{Type: "done"})
		conn.Close(websocket.StatusNormalClosure, "")
	})

	return r
}
