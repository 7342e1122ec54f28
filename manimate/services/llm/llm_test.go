package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"manimate/manimate/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(chunks ...Chunk) <-chan Chunk {
	ch := make(chan Chunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func TestAccumulate_ConcatenatesInOrder(t *testing.T) {
	got, err := Accumulate(context.Background(), feed(Chunk{Text: "Hel"}, Chunk{Text: "lo, "}, Chunk{Text: "world"}))
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", got)
}

func TestAccumulate_EmptyStream(t *testing.T) {
	got, err := Accumulate(context.Background(), feed())
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestAccumulate_MidStreamErrorDiscardsOutput(t *testing.T) {
	boom := errors.New("connection reset")
	got, err := Accumulate(context.Background(), feed(Chunk{Text: "partial "}, Chunk{Err: boom}, Chunk{Text: "ignored"}))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, got)
}

func TestAccumulate_ContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	stream := make(chan Chunk)
	go func() { stream <- Chunk{Text: "first"} }()

	got, err := Accumulate(ctx, stream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, got)
}

func TestForward_DeliversEachChunk(t *testing.T) {
	var seen []string
	got, err := Forward(context.Background(), feed(Chunk{Text: "a"}, Chunk{Text: ""}, Chunk{Text: "b"}), func(s string) error {
		seen = append(seen, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", got)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestForward_CallbackErrorAborts(t *testing.T) {
	sinkErr := errors.New("client gone")
	got, err := Forward(context.Background(), feed(Chunk{Text: "a"}, Chunk{Text: "b"}), func(string) error {
		return sinkErr
	})
	assert.ErrorIs(t, err, sinkErr)
	assert.Empty(t, got)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     interface{}
	}{
		{"gemini", &GeminiClient{}},
		{"openai", &OpenAIClient{}},
		{"groq", &OpenAIClient{}},
		{"ollama", &OllamaClient{}},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(config.Config{LLMProvider: tt.provider})
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}

	groq, err := NewProvider(config.Config{LLMProvider: "groq"})
	require.NoError(t, err)
	assert.Equal(t, GroqBaseURL, groq.(*OpenAIClient).baseURL)

	_, err = NewProvider(config.Config{LLMProvider: "nope"})
	assert.Error(t, err)
}
