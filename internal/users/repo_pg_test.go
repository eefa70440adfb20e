package users

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateWritesRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "a@b.c", "hash", nil, true, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles")).
		WithArgs("u1", "editor").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), User{ID: "u1", Email: "a@b.c", PasswordHash: "hash", Roles: []string{"editor"}, IsActive: true, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err = (&PGRepo{DB: db}).Create(context.Background(), User{ID: "u1", Email: "a@b.c"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPGRepoCreateFirst(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		wantErr  error
	}{
		{name: "empty table", existing: 0},
		{name: "users exist", existing: 1, wantErr: ErrUsersExist},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("LOCK TABLE users")).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.existing))
			if tt.wantErr == nil {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles")).
					WithArgs("u1", "admin").
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err = (&PGRepo{DB: db}).CreateFirst(context.Background(), User{ID: "u1", Email: "a@b.c", Roles: []string{"admin"}, IsActive: true})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations: %v", err)
			}
		})
	}
}

func TestPGRepoGetByEmailLoadsRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).WithArgs("a@b.c").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "password_hash", "organization_id", "is_active", "created_at", "updated_at"}).
			AddRow("u1", "a@b.c", "hash", "org-1", true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_roles")).WithArgs("u1").WillReturnRows(
		sqlmock.NewRows([]string{"role"}).AddRow("admin").AddRow("reviewer"))

	user, err := (&PGRepo{DB: db}).GetByEmail(context.Background(), "a@b.c")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.OrganizationID != "org-1" || len(user.Roles) != 2 || user.Roles[1] != "reviewer" {
		t.Fatalf("unexpected user: %+v", user)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).WithArgs("nobody@b.c").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "password_hash", "organization_id", "is_active", "created_at", "updated_at"}))
	if _, err := (&PGRepo{DB: db}).GetByEmail(context.Background(), "nobody@b.c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
