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

const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewGeminiClient(httpClient *http.Client, baseURL, apiKey string) *GeminiClient {
	return &GeminiClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(orDefault(baseURL, GeminiBaseURL), "/"),
		apiKey:     apiKey,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP,omitempty"`
	TopK             int     `json:"topK,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiStreamResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func buildGeminiRequest(req Request) geminiRequest {
	out := geminiRequest{
		GenerationConfig: geminiGenerationConfig{
			Temperature:      req.Config.Temperature,
			TopP:             req.Config.TopP,
			TopK:             req.Config.TopK,
			MaxOutputTokens:  req.Config.MaxOutputTokens,
			ResponseMimeType: "text/plain",
		},
	}
	if req.SystemInstruction != "" {
		out.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction}}}
	}
	for _, c := range req.Contents {
		out.Contents = append(out.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: c}}})
	}
	return out
}

func (c *GeminiClient) RunStream(ctx context.Context, req Request) (<-chan Chunk, error) {
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, req.Model)
	body, err := httputils.PostStream(ctx, c.httpClient, url,
		map[string]string{"x-goog-api-key": c.apiKey}, buildGeminiRequest(req))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	ch := make(chan Chunk)
	go func() {
		defer logging.LogDuration(ctx, "gemini_run_stream")()
		defer func() {
			close(ch)
			body.Close()
		}()

		// A stream counts as complete only once a candidate reports a finishReason.
		finished := false
		err := readSSE(body, func(data string) error {
			var resp geminiStreamResponse
			if err := json.Unmarshal([]byte(data), &resp); err != nil {
				logging.ErrorLogger.Error("gemini stream JSON parse error",
					zap.Error(err), zap.String("raw_line", data))
				return fmt.Errorf("malformed frame: %w", err)
			}
			if resp.Error != nil {
				return fmt.Errorf("gemini stream error %d: %s", resp.Error.Code, resp.Error.Message)
			}
			for _, cand := range resp.Candidates {
				if cand.FinishReason != "" {
					finished = true
				}
				for _, part := range cand.Content.Parts {
					if part.Text == "" {
						continue
					}
					if !send(ctx, ch, Chunk{Text: part.Text}) {
						return ctx.Err()
					}
				}
			}
			return nil
		})
		if err == nil && !finished {
			err = ErrIncompleteStream
		}
		if err != nil {
			send(ctx, ch, Chunk{Err: fmt.Errorf("gemini stream: %w", err)})
		}
	}()

	return ch, nil
}
