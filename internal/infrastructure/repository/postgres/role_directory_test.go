package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

func newRoleDirectoryWithMock(t *testing.T) (*RoleDirectory, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &RoleDirectory{db: db}, mock, func() { _ = db.Close() }
}

func TestResolveKnownToken(t *testing.T) {
	dir, mock, done := newRoleDirectoryWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"user_id", "email", "role"}).
		AddRow("user-7", "likvidator@example.com", "handler")
	mock.ExpectQuery("SELECT u.user_id, u.email, u.role").
		WithArgs("tok-1").
		WillReturnRows(rows)

	session, err := dir.Resolve(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.UserID != "user-7" || session.Role != domain.RoleHandler || session.IsAdmin() {
		t.Fatalf("session = %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResolveUnknownTokenUnauthorized(t *testing.T) {
	dir, mock, done := newRoleDirectoryWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT u.user_id, u.email, u.role").
		WithArgs("bogus").
		WillReturnError(sql.ErrNoRows)

	_, err := dir.Resolve(context.Background(), "bogus")
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResolveEmptyTokenUnauthorized(t *testing.T) {
	dir, _, done := newRoleDirectoryWithMock(t)
	defer done()

	if _, err := dir.Resolve(context.Background(), ""); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResolveUnknownRoleUnauthorized(t *testing.T) {
	dir, mock, done := newRoleDirectoryWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"user_id", "email", "role"}).
		AddRow("user-9", "", "superuser")
	mock.ExpectQuery("SELECT u.user_id, u.email, u.role").
		WithArgs("tok-9").
		WillReturnRows(rows)

	if _, err := dir.Resolve(context.Background(), "tok-9"); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
