package repository

import (
	"context"
	"errors"

	"qrcode-api/internal/domain"
	"qrcode-api/internal/pagination"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("already exists")
)

// UserRepository defines persistence operations for User entities.
// Every mutation is a single atomic statement.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error)
	// UpdateProfile and SetFlags leave columns whose argument is nil untouched.
	UpdateProfile(ctx context.Context, id int64, email, passwordHash *string) error
	SetAPIKey(ctx context.Context, id int64, apiKey string) error
	SetFlags(ctx context.Context, id int64, active, superuser *bool) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, q pagination.Query) ([]domain.User, error)
}

// UserSortFields is the allow-list for sorting user listings.
var UserSortFields = pagination.NewSortFields("created_at", "id", map[string]string{
	"created_at": "created_at",
	"username":   "username",
	"email":      "email",
})
