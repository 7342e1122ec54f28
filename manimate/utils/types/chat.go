package types

import "time"

type CreateChatRequest struct {
	Title string `json:"title"`
}

type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Prompt    string `json:"prompt"`
}

// ManimScript is the structured reply to the first prompt of a session.
type ManimScript struct {
	ChatName    string `json:"chatname"`
	Description string `json:"description"`
	ManimCode   string `json:"manim_code"`
}

type CreateChatResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type InitialChatResponse struct {
	Message   string      `json:"message"`
	Response  ManimScript `json:"response"`
	SessionID string      `json:"sessionId"`
}

type FollowUpResponse struct {
	Result string `json:"result"`
}

// For the sessions panel
type ChatSessionSummary struct {
	SessionID string    `json:"sessionId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Frames exchanged on the follow-up websocket.
type StreamInit struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
	Prompt    string `json:"prompt"`
}

type StreamFrame struct {
	Type  string `json:"type"` // chunk, done or error
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}
