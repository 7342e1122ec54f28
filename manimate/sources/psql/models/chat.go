package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one immutable turn. Messages of a session are ordered by CreatedAt.
type Message struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID uuid.UUID `json:"session_id" gorm:"type:uuid;not null;index:idx_chat_messages_session_created,priority:1"`
	Session   Session   `json:"-" gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE"`
	Sender    Sender    `json:"sender" gorm:"type:varchar(16);not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_chat_messages_session_created,priority:2"`
}

func (Message) TableName() string {
	return "chat_messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return nil
}
