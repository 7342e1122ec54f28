package controllers

import (
	"context"
	"sync"
	"testing"
	"time"

	"manimate/manimate/config"
	"manimate/manimate/services/llm"
	"manimate/manimate/services/oauth"
	"manimate/manimate/services/prompts"
	"manimate/manimate/services/token"
	"manimate/manimate/sources/psql/dao"
	"manimate/manimate/sources/psql/psqltest"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeProvider replays canned chunks and records every request.
type fakeProvider struct {
	mu       sync.Mutex
	chunks   []llm.Chunk
	startErr error
	requests []llm.Request
}

func (f *fakeProvider) RunStream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	chunks := append([]llm.Chunk(nil), f.chunks...)
	f.mu.Unlock()

	if f.startErr != nil {
		return nil, f.startErr
	}
	ch := make(chan llm.Chunk)
	go func() {
		defer close(ch)
		for _, c := range chunks {
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (f *fakeProvider) lastRequest(t *testing.T) llm.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func replyWith(parts ...string) []llm.Chunk {
	chunks := make([]llm.Chunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, llm.Chunk{Text: p})
	}
	return chunks
}

type fakeVerifier struct {
	provider string
	profile  *oauth.Profile
	err      error
}

func (f *fakeVerifier) Provider() string { return f.provider }

func (f *fakeVerifier) AuthCodeURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (f *fakeVerifier) Verify(ctx context.Context, code string) (*oauth.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeArchive struct {
	mu    sync.Mutex
	saved map[string]string
	err   error
}

func (f *fakeArchive) PutScript(ctx context.Context, sessionID, chatName, code string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	key := "sessions/" + sessionID + "/" + chatName + ".py"
	f.saved[key] = code
	return key, nil
}

type fixture struct {
	db       *gorm.DB
	users    *dao.UserDAO
	sessions *dao.SessionDAO
	messages *dao.ChatMessageDAO
	issuer   *token.Issuer
	provider *fakeProvider
	archive  *fakeArchive
	auth     *AuthController
	chat     *ChatController
}

func newFixture(t *testing.T, verifiers ...oauth.Verifier) *fixture {
	t.Helper()
	catalogue, err := prompts.Load()
	require.NoError(t, err)

	db := psqltest.NewDB(t)
	f := &fixture{
		db:       db,
		users:    dao.NewUserDAO(db),
		sessions: dao.NewSessionDAO(db),
		messages: dao.NewChatMessageDAO(db),
		issuer:   token.NewIssuer("test-secret", time.Hour),
		provider: &fakeProvider{},
		archive:  &fakeArchive{},
	}
	cfg := config.Config{LLMModel: "test-model", GenerationTimeout: 5 * time.Second}
	f.auth = NewAuthController(f.users, f.issuer, oauth.NewRegistry(verifiers...))
	f.chat = NewChatController(f.sessions, f.messages, f.provider, catalogue, cfg, f.archive)
	return f
}
