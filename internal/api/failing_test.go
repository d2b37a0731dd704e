package api

import (
	"context"
	"errors"

	"github.com/isdelr/exercise-tracker/internal/models"
)

var errDisk = errors.New("disk I/O error")

type failingUsers struct{}

func (failingUsers) GetAllUsers(context.Context) ([]models.User, error) {
	return nil, errDisk
}

func (failingUsers) GetUserByID(context.Context, string) (models.User, error) {
	return models.User{}, errDisk
}

func (failingUsers) CreateUser(context.Context, string) (models.User, error) {
	return models.User{}, errDisk
}
