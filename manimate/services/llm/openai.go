package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	httputils "manimate/manimate/utils/http"
	"manimate/manimate/utils/logging"

	"go.uber.org/zap"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
)

// OpenAIClient speaks the chat completions API shared by OpenAI and Groq.
type OpenAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewOpenAIClient(httpClient *http.Client, baseURL, apiKey string) *OpenAIClient {
	return &OpenAIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type openAIStreamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

func buildOpenAIRequest(req Request) openAIChatRequest {
	out := openAIChatRequest{
		Model:       req.Model,
		Stream:      true,
		Temperature: req.Config.Temperature,
		TopP:        req.Config.TopP,
		MaxTokens:   req.Config.MaxOutputTokens,
	}
	if req.SystemInstruction != "" {
		out.Messages = append(out.Messages, Message{Role: "system", Content: req.SystemInstruction})
	}
	for _, c := range req.Contents {
		out.Messages = append(out.Messages, Message{Role: "user", Content: c})
	}
	return out
}

func (c *OpenAIClient) RunStream(ctx context.Context, req Request) (<-chan Chunk, error) {
	body, err := httputils.PostStream(ctx, c.httpClient, c.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.apiKey}, buildOpenAIRequest(req))
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}

	ch := make(chan Chunk)
	go func() {
		defer logging.LogDuration(ctx, "openai_run_stream")()
		defer func() {
			close(ch)
			body.Close()
		}()

		done := false
		err := readSSE(body, func(data string) error {
			if data == "[DONE]" {
				done = true
				return errStop
			}
			var chunk openAIStreamResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				logging.ErrorLogger.Error("chat completion stream JSON parse error",
					zap.Error(err), zap.String("raw_line", data))
				return fmt.Errorf("malformed frame: %w", err)
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !send(ctx, ch, Chunk{Text: choice.Delta.Content}) {
					return ctx.Err()
				}
			}
			return nil
		})
		if err == nil && !done {
			err = ErrIncompleteStream
		}
		if err != nil {
			send(ctx, ch, Chunk{Err: fmt.Errorf("chat completion stream: %w", err)})
		}
	}()

	return ch, nil
}
