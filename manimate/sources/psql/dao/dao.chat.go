package dao

import (
	"context"
	"fmt"

	"manimate/manimate/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageDAO struct {
	DB *gorm.DB
}

func NewChatMessageDAO(db *gorm.DB) *ChatMessageDAO {
	return &ChatMessageDAO{DB: db}
}

// GetChatHistoryBySession returns the messages of a session oldest first.
func (dao *ChatMessageDAO) GetChatHistoryBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	messages := []models.Message{}
	err := dao.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SaveExchange appends a prompt and its reply in one transaction and bumps the session.
func (dao *ChatMessageDAO) SaveExchange(ctx context.Context, prompt, reply *models.Message) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prompt).Error; err != nil {
			return fmt.Errorf("save prompt: %w", err)
		}
		if err := tx.Create(reply).Error; err != nil {
			return fmt.Errorf("save reply: %w", err)
		}
		return tx.Model(&models.Session{ID: prompt.SessionID}).
			Update("updated_at", tx.NowFunc()).Error
	})
}
