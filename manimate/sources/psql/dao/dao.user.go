package dao

import (
	"context"
	"errors"

	"manimate/manimate/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when a unique index (email, provider identity) rejects a write.
var ErrDuplicate = errors.New("duplicate record")

type UserDAO struct {
	DB *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{DB: db}
}

// GetUserByID returns nil, nil when no user matches.
func (dao *UserDAO) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (dao *UserDAO) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (dao *UserDAO) GetUserByExternalID(ctx context.Context, method models.AuthMethod, externalID string) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).
		Where("auth_method = ? AND external_id = ?", method, externalID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (dao *UserDAO) CreateUser(ctx context.Context, user *models.User) error {
	err := dao.DB.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
