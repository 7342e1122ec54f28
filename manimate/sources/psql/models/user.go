package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthMethod string

const (
	AuthMethodCredentials AuthMethod = "credentials"
	AuthMethodGoogle      AuthMethod = "google"
	AuthMethodGitHub      AuthMethod = "github"
)

// User is an account. PasswordHash is only set for AuthMethodCredentials,
// ExternalID only for provider accounts.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	FirstName    string     `json:"first_name" gorm:"type:varchar(255);not null"`
	LastName     string     `json:"last_name" gorm:"type:varchar(255);not null;default:''"`
	Email        string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash *string    `json:"-" gorm:"type:varchar(255)"`
	AuthMethod   AuthMethod `json:"auth_method" gorm:"type:varchar(32);not null;default:'credentials';uniqueIndex:idx_users_external"`
	ExternalID   *string    `json:"-" gorm:"type:varchar(255);uniqueIndex:idx_users_external"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
