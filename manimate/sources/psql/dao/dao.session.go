package dao

import (
	"context"
	"errors"

	"manimate/manimate/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionDAO struct {
	DB *gorm.DB
}

func NewSessionDAO(db *gorm.DB) *SessionDAO {
	return &SessionDAO{DB: db}
}

func (dao *SessionDAO) CreateSession(ctx context.Context, userID uuid.UUID, title string) (*models.Session, error) {
	session := models.Session{UserID: userID, Title: title}
	if err := dao.DB.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession returns the session only if it belongs to userID; nil, nil otherwise.
func (dao *SessionDAO) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := dao.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (dao *SessionDAO) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	sessions := []models.Session{}
	err := dao.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (dao *SessionDAO) UpdateTitle(ctx context.Context, sessionID uuid.UUID, title string) error {
	return dao.DB.WithContext(ctx).
		Model(&models.Session{ID: sessionID}).
		Update("title", title).Error
}
