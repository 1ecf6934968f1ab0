package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Akshith040/EcoScan1/internal/db"
	"github.com/Akshith040/EcoScan1/internal/domain"
)

type UserStore struct {
	db *db.DB
}

func NewUserStore(d *db.DB) *UserStore {
	return &UserStore{db: d}
}

// Create inserts a user. ErrDuplicateEmail is returned if the address is taken.
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)
	`), user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, `
		SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?
	`, NormalizeEmail(email))
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findOne(ctx, `
		SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?
	`, id)
}

func (s *UserStore) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	err := s.db.QueryRowContext(ctx, s.db.Rebind(query), arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
