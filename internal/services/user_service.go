package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/exercise-tracker/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, username string) (models.User, error)
}

// UserService provides user storage backed by SQLite.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetAllUsers retrieves every user in insertion order.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, username FROM users ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx, "SELECT id, username FROM users WHERE id = ?", id)
	if err := row.Scan(&user.ID, &user.Username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser stores a new user. Usernames are not required to be unique.
func (s *UserService) CreateUser(ctx context.Context, username string) (models.User, error) {
	user := models.User{
		ID:       uuid.New().String(),
		Username: username,
	}

	_, err := s.db.ExecContext(ctx, "INSERT INTO users(id, username) VALUES(?, ?)", user.ID, user.Username)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
