package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/nanafox/user-management-system/internal/domain"
	"github.com/nanafox/user-management-system/internal/repository"
)

func setupMockRepo(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func userColumns() []string {
	return []string{"id", "username", "password", "is_active", "created_at", "updated_at"}
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			sqlmock.AnyArg(), "joe", "hash", true,
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &domain.User{Username: "joe", Password: "hash", IsActive: true}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uuid.Parse(user.ID); err != nil {
		t.Errorf("Create assigned ID %q, not a UUID: %v", user.ID, err)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Create did not set timestamps")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username"))

	err := repo.Create(context.Background(), &domain.User{Username: "joe", Password: "hash"})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery("FROM users").
		WithArgs("missing-id").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing-id")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGetByUsernameScansUser(t *testing.T) {
	repo, mock := setupMockRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM users").
		WithArgs("joe").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow("id-1", "joe", "hash", true, now, now))

	user, err := repo.GetByUsername(context.Background(), "joe")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if user.ID != "id-1" || user.Username != "joe" || !user.IsActive {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.String() != "joe" {
		t.Errorf("String() = %q, want %q", user.String(), "joe")
	}
}

func TestListUsesNegativeLimitForUnbounded(t *testing.T) {
	repo, mock := setupMockRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM users").
		WithArgs(-1, 0).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow("id-1", "alice", "h1", true, now, now).
			AddRow("id-2", "bob", "h2", true, now, now))

	users, err := repo.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "bob" {
		t.Fatalf("unexpected users: %+v", users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListPassesSkipAndLimit(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery("FROM users").
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows(userColumns()))

	users, err := repo.List(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users, got %d", len(users))
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.User{ID: "missing", Username: "joe", Password: "hash"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUpdateMapsUniqueViolation(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectExec("UPDATE users").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username"))

	err := repo.Update(context.Background(), &domain.User{ID: "id-1", Username: "taken", Password: "hash"})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectExec("DELETE FROM users").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "id-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectExec("DELETE FROM users").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
