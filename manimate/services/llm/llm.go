// Package llm streams completions from generative model backends.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"manimate/manimate/config"
)

// ErrIncompleteStream is reported when a backend closes the stream before its end marker.
var ErrIncompleteStream = errors.New("stream ended before completion")

type GenerationConfig struct {
	Temperature     float64 `yaml:"temperature"`
	TopP            float64 `yaml:"top_p"`
	TopK            int     `yaml:"top_k"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// Request is one generation call. Contents are user turns, sent in order.
type Request struct {
	Model             string
	SystemInstruction string
	Contents          []string
	Config            GenerationConfig
}

// Chunk carries either a text fragment or the error that ended the stream.
type Chunk struct {
	Text string
	Err  error
}

type Provider interface {
	// RunStream starts a generation. The channel is closed when the stream ends;
	// a failure is delivered as a final Chunk with Err set.
	RunStream(ctx context.Context, req Request) (<-chan Chunk, error)
}

// Accumulate concatenates chunks in receive order. Any stream error or
// context cancellation discards what was gathered.
func Accumulate(ctx context.Context, stream <-chan Chunk) (string, error) {
	return Forward(ctx, stream, nil)
}

// Forward is Accumulate that also hands every fragment to onChunk as it arrives.
// An error from onChunk aborts the accumulation.
func Forward(ctx context.Context, stream <-chan Chunk, onChunk func(string) error) (string, error) {
	var sb strings.Builder
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case chunk, ok := <-stream:
			if !ok {
				if err := ctx.Err(); err != nil {
					return "", err
				}
				return sb.String(), nil
			}
			if chunk.Err != nil {
				return "", chunk.Err
			}
			if chunk.Text == "" {
				continue
			}
			if onChunk != nil {
				if err := onChunk(chunk.Text); err != nil {
					return "", err
				}
			}
			sb.WriteString(chunk.Text)
		}
	}
}

// send delivers c unless ctx is done first.
func send(ctx context.Context, ch chan<- Chunk, c Chunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// NewProvider builds the backend selected by LLM_PROVIDER.
func NewProvider(cfg config.Config) (Provider, error) {
	client := &http.Client{}
	switch strings.ToLower(cfg.LLMProvider) {
	case "gemini":
		return NewGeminiClient(client, cfg.LLMBaseURL, cfg.GeminiAPIKey), nil
	case "openai":
		return NewOpenAIClient(client, orDefault(cfg.LLMBaseURL, OpenAIBaseURL), cfg.OpenAIAPIKey), nil
	case "groq":
		return NewOpenAIClient(client, orDefault(cfg.LLMBaseURL, GroqBaseURL), cfg.GroqAPIKey), nil
	case "ollama":
		return NewOllamaClient(client, cfg.LLMBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
