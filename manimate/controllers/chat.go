package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"manimate/manimate/config"
	"manimate/manimate/services/llm"
	"manimate/manimate/services/prompts"
	"manimate/manimate/sources/psql/dao"
	"manimate/manimate/sources/psql/models"
	"manimate/manimate/utils/apperrors"
	"manimate/manimate/utils/jsonutils"
	"manimate/manimate/utils/logging"
	"manimate/manimate/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const generationFailed = "Failed to generate manim script"

// ScriptArchiver keeps a copy of every parsed initial script.
type ScriptArchiver interface {
	PutScript(ctx context.Context, sessionID, chatName, code string) (string, error)
}

type ChatController struct {
	sessions *dao.SessionDAO
	messages *dao.ChatMessageDAO
	provider llm.Provider
	prompts  prompts.Catalogue
	model    string
	timeout  time.Duration
	archive  ScriptArchiver
	now      func() time.Time
}

type InitialResult struct {
	Script    types.ManimScript
	SessionID string
}

// NewChatController wires the orchestrator. archive may be nil.
func NewChatController(sessions *dao.SessionDAO, messages *dao.ChatMessageDAO, provider llm.Provider,
	catalogue prompts.Catalogue, cfg config.Config, archive ScriptArchiver) *ChatController {
	return &ChatController{
		sessions: sessions,
		messages: messages,
		provider: provider,
		prompts:  catalogue,
		model:    cfg.LLMModel,
		timeout:  cfg.GenerationTimeout,
		archive:  archive,
		now:      time.Now,
	}
}

func (c *ChatController) CreateSession(ctx context.Context, userID, title string) (*models.Session, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	session, err := c.sessions.CreateSession(ctx, uid, strings.TrimSpace(title))
	if err != nil {
		return nil, apperrors.Internal("Internal Server Error", err)
	}
	return session, nil
}

func (c *ChatController) ListSessions(ctx context.Context, userID string) ([]types.ChatSessionSummary, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	sessions, err := c.sessions.ListSessions(ctx, uid)
	if err != nil {
		return nil, apperrors.Internal("Internal Server Error", err)
	}
	out := make([]types.ChatSessionSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, types.ChatSessionSummary{
			SessionID: s.ID.String(),
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return out, nil
}

func (c *ChatController) SessionMessages(ctx context.Context, userID, sessionID string) ([]types.ChatMessage, error) {
	session, err := c.loadSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	history, err := c.messages.GetChatHistoryBySession(ctx, session.ID)
	if err != nil {
		return nil, apperrors.Internal("Internal Server Error", err)
	}
	out := make([]types.ChatMessage, 0, len(history))
	for _, m := range history {
		out = append(out, types.ChatMessage{
			ID:        m.ID.String(),
			Sender:    string(m.Sender),
			Message:   m.Body,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// GenerateInitialResponse asks for the first script of a session and names the session after it.
func (c *ChatController) GenerateInitialResponse(ctx context.Context, userID, sessionID, prompt string) (*InitialResult, error) {
	defer logging.LogDuration(ctx, "chat_generate_initial")()

	if err := checkGenerateInput(userID, sessionID, prompt); err != nil {
		return nil, err
	}
	session, err := c.loadSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	promptAt := c.stamp()
	raw, err := c.generate(ctx, c.prompts.Request(prompts.Initial, c.model, prompt), nil)
	if err != nil {
		return nil, err
	}

	decoded, err := jsonutils.DecodeManimScript(raw)
	if err != nil {
		return nil, apperrors.UpstreamFormat(generationFailed, err)
	}
	script := jsonutils.NormalizeManimScript(decoded)

	if err := c.sessions.UpdateTitle(ctx, session.ID, script.ChatName); err != nil {
		return nil, apperrors.Internal("Internal Server Error", err)
	}
	if err := c.saveExchange(ctx, session.ID, prompt, raw, promptAt); err != nil {
		return nil, err
	}
	c.archiveScript(ctx, session.ID.String(), decoded)

	return &InitialResult{Script: script, SessionID: session.ID.String()}, nil
}

// GenerateFollowUp continues a session with the prior transcript as context and returns the raw reply.
func (c *ChatController) GenerateFollowUp(ctx context.Context, userID, sessionID, prompt string) (string, error) {
	return c.followUp(ctx, userID, sessionID, prompt, nil)
}

// GenerateFollowUpStream is GenerateFollowUp that forwards each fragment to onChunk as it arrives.
// Nothing is persisted unless the stream completes.
func (c *ChatController) GenerateFollowUpStream(ctx context.Context, userID, sessionID, prompt string,
	onChunk func(string) error) (string, error) {
	return c.followUp(ctx, userID, sessionID, prompt, onChunk)
}

func (c *ChatController) followUp(ctx context.Context, userID, sessionID, prompt string, onChunk func(string) error) (string, error) {
	defer logging.LogDuration(ctx, "chat_generate_followup")()

	if err := checkGenerateInput(userID, sessionID, prompt); err != nil {
		return "", err
	}
	session, err := c.loadSession(ctx, userID, sessionID)
	if err != nil {
		return "", err
	}

	history, err := c.messages.GetChatHistoryBySession(ctx, session.ID)
	if err != nil {
		return "", apperrors.Internal("Internal Server Error", err)
	}

	contents := []string{prompt}
	if transcript := RenderTranscript(history); transcript != "" {
		contents = []string{transcript, prompt}
	}

	promptAt := c.stamp()
	reply, err := c.generate(ctx, c.prompts.Request(prompts.FollowUp, c.model, contents...), onChunk)
	if err != nil {
		return "", err
	}
	if err := c.saveExchange(ctx, session.ID, prompt, reply, promptAt); err != nil {
		return "", err
	}
	return reply, nil
}

// RenderTranscript lists messages as "User: ..." / "AI: ..." lines in the given order.
func RenderTranscript(history []models.Message) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		speaker := "AI"
		if m.Sender == models.SenderUser {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+m.Body)
	}
	return strings.Join(lines, "\n")
}

func (c *ChatController) generate(ctx context.Context, req llm.Request, onChunk func(string) error) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream, err := c.provider.RunStream(genCtx, req)
	if err != nil {
		logging.ErrorLogger.Error("generation request failed", zap.Error(err))
		return "", apperrors.Upstream(generationFailed, err)
	}
	text, err := llm.Forward(genCtx, stream, onChunk)
	if err != nil {
		logging.ErrorLogger.Error("generation stream failed", zap.Error(err),
			zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)))
		return "", apperrors.Upstream(generationFailed, err)
	}
	return text, nil
}

func (c *ChatController) saveExchange(ctx context.Context, sessionID uuid.UUID, prompt, reply string, promptAt time.Time) error {
	replyAt := c.stamp()
	if !replyAt.After(promptAt) {
		replyAt = promptAt.Add(time.Microsecond)
	}
	err := c.messages.SaveExchange(ctx,
		&models.Message{SessionID: sessionID, Sender: models.SenderUser, Body: prompt, CreatedAt: promptAt},
		&models.Message{SessionID: sessionID, Sender: models.SenderAssistant, Body: reply, CreatedAt: replyAt},
	)
	if err != nil {
		return apperrors.Internal("Internal Server Error", err)
	}
	return nil
}

func (c *ChatController) archiveScript(ctx context.Context, sessionID string, script types.ManimScript) {
	if c.archive == nil {
		return
	}
	key, err := c.archive.PutScript(ctx, sessionID, script.ChatName, script.ManimCode)
	if err != nil {
		logging.ErrorLogger.Error("archive script failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	logging.AppLogger.Info("script archived", zap.String("session_id", sessionID), zap.String("key", key))
}

// stamp is microsecond precision so stored and compared times agree.
func (c *ChatController) stamp() time.Time {
	return c.now().UTC().Truncate(time.Microsecond)
}

// checkGenerateInput validates the caller, the session id and the prompt, in that order.
func checkGenerateInput(userID, sessionID, prompt string) error {
	if _, err := parseUserID(userID); err != nil {
		return err
	}
	if strings.TrimSpace(sessionID) == "" {
		return apperrors.Validation("Session ID is required")
	}
	if strings.TrimSpace(prompt) == "" {
		return apperrors.Validation("Prompt is required")
	}
	return nil
}

// loadSession returns the session only if userID owns it.
func (c *ChatController) loadSession(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.Validation("Session ID is required")
	}
	sid, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperrors.NotFound("Session not found")
	}
	session, err := c.sessions.GetSession(ctx, uid, sid)
	if err != nil {
		return nil, apperrors.Internal("Internal Server Error", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session not found")
	}
	return session, nil
}

func parseUserID(userID string) (uuid.UUID, error) {
	if userID == "" {
		return uuid.Nil, apperrors.Unauthorized("Unauthorized")
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized("Unauthorized")
	}
	return uid, nil
}
