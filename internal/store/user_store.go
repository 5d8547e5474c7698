package store

import (
	"context"

	"gestorbanco/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, q Getter, user models.User) (int64, error) {
	var id int64
	err := q.GetContext(ctx, &id, `
		INSERT INTO users (username, password_hash, nombre, apellidos, email, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, user.Username, user.PasswordHash, user.Nombre, user.Apellidos, user.Email, string(user.Role))
	return id, wrap("create user", err)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, password_hash, nombre, apellidos, email, role, created_at
		FROM users
		WHERE username = $1
	`, username)
	if err != nil {
		return models.User{}, wrap("get user", err)
	}
	return row, nil
}

func (s *UserStore) Exists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)
	`, username, email)
	return exists, wrap("user exists", err)
}
