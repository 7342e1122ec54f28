package controllers

import (
	"context"

	"manimate/manimate/sources/psql/dao"
	"manimate/manimate/sources/psql/models"
	"manimate/manimate/utils/apperrors"

	"github.com/google/uuid"
)

type UserController struct {
	dao *dao.UserDAO
}

func NewUserController(dao *dao.UserDAO) *UserController {
	return &UserController{dao: dao}
}

func (c *UserController) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	user, err := c.dao.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Internal Server Error", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User not found").AsMessage()
	}
	return user, nil
}
