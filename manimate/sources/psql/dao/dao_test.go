package dao

import (
	"context"
	"testing"
	"time"

	"manimate/manimate/sources/psql/models"
	"manimate/manimate/sources/psql/psqltest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserDAO_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	users := NewUserDAO(psqltest.NewDB(t))

	u := &models.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: strPtr("hash"),
		AuthMethod:   models.AuthMethodCredentials,
	}
	require.NoError(t, users.CreateUser(ctx, u))
	require.NotEqual(t, uuid.Nil, u.ID)

	byEmail, err := users.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Ada", byID.FirstName)

	missing, err := users.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserDAO_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserDAO(psqltest.NewDB(t))

	first := &models.User{FirstName: "A", Email: "dup@example.com", AuthMethod: models.AuthMethodCredentials}
	require.NoError(t, users.CreateUser(ctx, first))

	second := &models.User{FirstName: "B", Email: "dup@example.com", AuthMethod: models.AuthMethodCredentials}
	assert.ErrorIs(t, users.CreateUser(ctx, second), ErrDuplicate)
}

func TestUserDAO_GetUserByExternalID(t *testing.T) {
	ctx := context.Background()
	users := NewUserDAO(psqltest.NewDB(t))

	u := &models.User{
		FirstName:  "Grace",
		Email:      "grace@example.com",
		AuthMethod: models.AuthMethodGitHub,
		ExternalID: strPtr("4242"),
	}
	require.NoError(t, users.CreateUser(ctx, u))

	found, err := users.GetUserByExternalID(ctx, models.AuthMethodGitHub, "4242")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	other, err := users.GetUserByExternalID(ctx, models.AuthMethodGoogle, "4242")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestSessionDAO_OwnershipAndTitle(t *testing.T) {
	ctx := context.Background()
	db := psqltest.NewDB(t)
	users := NewUserDAO(db)
	sessions := NewSessionDAO(db)

	owner := &models.User{FirstName: "O", Email: "o@example.com", AuthMethod: models.AuthMethodCredentials}
	stranger := &models.User{FirstName: "S", Email: "s@example.com", AuthMethod: models.AuthMethodCredentials}
	require.NoError(t, users.CreateUser(ctx, owner))
	require.NoError(t, users.CreateUser(ctx, stranger))

	s, err := sessions.CreateSession(ctx, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSessionTitle, s.Title)

	got, err := sessions.GetSession(ctx, stranger.ID, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, sessions.UpdateTitle(ctx, s.ID, "pythagorean_theorem"))
	got, err = sessions.GetSession(ctx, owner.ID, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "pythagorean_theorem", got.Title)

	list, err := sessions.ListSessions(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	empty, err := sessions.ListSessions(ctx, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestChatMessageDAO_HistoryOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	db := psqltest.NewDB(t)
	users := NewUserDAO(db)
	sessions := NewSessionDAO(db)
	messages := NewChatMessageDAO(db)

	u := &models.User{FirstName: "U", Email: "u@example.com", AuthMethod: models.AuthMethodCredentials}
	require.NoError(t, users.CreateUser(ctx, u))
	s, err := sessions.CreateSession(ctx, u.ID, "t")
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	// later exchange written first; history must still follow CreatedAt
	require.NoError(t, messages.SaveExchange(ctx,
		&models.Message{SessionID: s.ID, Sender: models.SenderUser, Body: "m3", CreatedAt: base.Add(3 * time.Second)},
		&models.Message{SessionID: s.ID, Sender: models.SenderAssistant, Body: "m4", CreatedAt: base.Add(4 * time.Second)},
	))
	require.NoError(t, messages.SaveExchange(ctx,
		&models.Message{SessionID: s.ID, Sender: models.SenderUser, Body: "m1", CreatedAt: base.Add(1 * time.Second)},
		&models.Message{SessionID: s.ID, Sender: models.SenderAssistant, Body: "m2", CreatedAt: base.Add(2 * time.Second)},
	))

	history, err := messages.GetChatHistoryBySession(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i, want := range []string{"m1", "m2", "m3", "m4"} {
		assert.Equal(t, want, history[i].Body)
	}
}
