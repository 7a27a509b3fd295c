package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUserRepository_IncrementTasks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET tasks_triggered = tasks_triggered + $1, tasks_completed = tasks_completed + $2 WHERE public_id = $3 AND deleted_at IS NULL")).
		WithArgs(1, 0, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementTasks(context.Background(), "u1", 1, 0); err != nil {
		t.Fatalf("increment tasks: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsernameNormalizes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE username = $1 AND deleted_at IS NULL")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id"}))

	_, ok, err := repo.GetByUsername(context.Background(), "  Admin ")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if ok {
		t.Fatalf("expected no user")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
