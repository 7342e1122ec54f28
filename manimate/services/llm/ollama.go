package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	httputils "manimate/manimate/utils/http"
	"manimate/manimate/utils/logging"
)

const OllamaBaseURL = "http://localhost:11434/api"

type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewOllamaClient(httpClient *http.Client, baseURL string) *OllamaClient {
	return &OllamaClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(orDefault(baseURL, OllamaBaseURL), "/"),
	}
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error"`
}

func (c *OllamaClient) RunStream(ctx context.Context, req Request) (<-chan Chunk, error) {
	payload := ollamaChatRequest{
		Model:  req.Model,
		Stream: true,
		Options: ollamaOptions{
			Temperature: req.Config.Temperature,
			TopP:        req.Config.TopP,
			TopK:        req.Config.TopK,
			NumPredict:  req.Config.MaxOutputTokens,
		},
	}
	if req.SystemInstruction != "" {
		payload.Messages = append(payload.Messages, Message{Role: "system", Content: req.SystemInstruction})
	}
	for _, content := range req.Contents {
		payload.Messages = append(payload.Messages, Message{Role: "user", Content: content})
	}

	body, err := httputils.PostStream(ctx, c.httpClient, c.baseURL+"/chat", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}

	ch := make(chan Chunk)
	go func() {
		defer logging.LogDuration(ctx, "ollama_run_stream")()
		defer func() {
			close(ch)
			body.Close()
		}()

		decoder := json.NewDecoder(body)
		for {
			var chunk ollamaChatResponse
			if err := decoder.Decode(&chunk); err != nil {
				if err == io.EOF {
					err = ErrIncompleteStream
				}
				send(ctx, ch, Chunk{Err: fmt.Errorf("ollama stream: %w", err)})
				return
			}
			if chunk.Error != "" {
				send(ctx, ch, Chunk{Err: fmt.Errorf("ollama stream: %s", chunk.Error)})
				return
			}
			if chunk.Message.Content != "" && !send(ctx, ch, Chunk{Text: chunk.Message.Content}) {
				return
			}
			if chunk.Done {
				return
			}
		}
	}()

	return ch, nil
}
