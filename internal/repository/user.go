package repository

import (
	"context"
	"errors"

	"github.com/nanafox/user-management-system/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no user record.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when an insert or update violates the
	// username uniqueness constraint.
	ErrDuplicate = errors.New("user already exists")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns users in insertion order. A non-positive limit means no limit.
	List(ctx context.Context, skip, limit int) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}
