package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nanafox/user-management-system/internal/domain"
	"github.com/nanafox/user-management-system/internal/repository"
)

// Selector names the field a user lookup dispatches on.
type Selector string

const (
	SelectorID       Selector = "id"
	SelectorUsername Selector = "username"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 15

	// maximum number of users a single list call may return when a limit
	// is requested
	listLimitCap = 100
)

// ValidationError indicates client-correctable input. Callers can match the
// category with errors.As and the specific failure with errors.Is.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	// ErrUsernameNumeric is returned when a username consists entirely of digits.
	ErrUsernameNumeric = ValidationError("username cannot be just numbers")
	// ErrInvalidUserID is returned when an ID lookup value is not a valid UUID.
	ErrInvalidUserID = ValidationError("invalid user id")
)

var (
	// ErrUserNotFound is returned when no user matches the lookup value.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when a create or update collides with
	// an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInternal is returned when an operation fails for reasons the caller
	// cannot correct, such as an unknown selector.
	ErrInternal = errors.New("An error while performing this action")
)

// ValidateUsername returns the username unchanged when it contains at least
// one non-digit rune and fails with ErrUsernameNumeric otherwise. The empty
// string passes here; length bounds are checked separately.
func ValidateUsername(username string) (string, error) {
	if username == "" {
		return username, nil
	}
	for _, r := range username {
		if !unicode.IsDigit(r) {
			return username, nil
		}
	}
	return "", ErrUsernameNumeric
}

// UserService describes user lifecycle operations.
type UserService interface {
	Create(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns users in insertion order. A non-positive limit means no
	// limit; positive limits are capped at 100.
	List(ctx context.Context, skip, limit int) ([]domain.User, error)
	// Update renames the user selected by (by, value) and, when newPassword
	// is non-empty, replaces their password.
	Update(ctx context.Context, by Selector, value, newUsername, newPassword string) (*domain.User, error)
	Delete(ctx context.Context, by Selector, value string) error
}

type userService struct {
	users       repository.UserRepository
	minPassword int
	maxPassword int
}

func NewUserService(users repository.UserRepository, minPasswordLen, maxPasswordLen int) UserService {
	return &userService{
		users:       users,
		minPassword: minPasswordLen,
		maxPassword: maxPasswordLen,
	}
}

func (s *userService) Create(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if err := s.validateUsername(username); err != nil {
		return nil, err
	}
	if err := s.validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username: username,
		Password: string(hash),
		IsActive: true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, SelectorID, id)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, SelectorUsername, username)
}

func (s *userService) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	if limit > listLimitCap {
		limit = listLimitCap
	}
	return s.users.List(ctx, skip, limit)
}

func (s *userService) Update(ctx context.Context, by Selector, value, newUsername, newPassword string) (*domain.User, error) {
	newUsername = strings.TrimSpace(newUsername)
	if err := s.validateUsername(newUsername); err != nil {
		return nil, err
	}
	if newPassword != "" {
		if err := s.validatePassword(newPassword); err != nil {
			return nil, err
		}
	}

	user, err := s.getUser(ctx, by, value)
	if err != nil {
		return nil, err
	}

	user.Username = newUsername
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUserAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, by Selector, value string) error {
	user, err := s.getUser(ctx, by, value)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// getUser dispatches a lookup on the selector. The typed constants keep
// normal call sites on the two valid branches; anything else is a programming
// error surfaced as ErrInternal.
func (s *userService) getUser(ctx context.Context, by Selector, value string) (*domain.User, error) {
	switch by {
	case SelectorID:
		if _, err := uuid.Parse(value); err != nil {
			return nil, ErrInvalidUserID
		}
		return s.lookup(s.users.GetByID(ctx, value))
	case SelectorUsername:
		return s.lookup(s.users.GetByUsername(ctx, value))
	default:
		return nil, ErrInternal
	}
}

func (s *userService) lookup(user *domain.User, err error) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) validateUsername(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return ValidationError(fmt.Sprintf(
			"username must be between %d and %d characters", usernameMinLen, usernameMaxLen))
	}
	_, err := ValidateUsername(username)
	return err
}

func (s *userService) validatePassword(password string) error {
	if len(password) < s.minPassword || len(password) > s.maxPassword {
		return ValidationError(fmt.Sprintf(
			"password must be between %d and %d characters", s.minPassword, s.maxPassword))
	}
	return nil
}
