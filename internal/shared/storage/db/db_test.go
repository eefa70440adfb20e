package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func withMockDriver(t *testing.T, dsn string) (sqlmock.Sqlmock, func()) {
	t.Helper()
	conn, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	// The DSN stays registered while this first handle is open.
	t.Cleanup(func() { conn.Close() })
	prev := openDB
	openDB = func(_, name string) (*sql.DB, error) {
		return sql.Open("sqlmock", name)
	}
	return mock, func() { openDB = prev }
}

func TestConnectPingsAndAppliesOptions(t *testing.T) {
	mock, restore := withMockDriver(t, "connect-ok")
	defer restore()
	mock.ExpectPing()

	database, err := Connect(context.Background(), "connect-ok", Options{MaxOpenConns: 3, PingTimeout: time.Second})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close()
	if got := database.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("expected max open 3, got %d", got)
	}
}

func TestConnectFailsOnPingError(t *testing.T) {
	mock, restore := withMockDriver(t, "connect-fail")
	defer restore()
	mock.ExpectPing().WillReturnError(errors.New("refused"))

	if _, err := Connect(context.Background(), "connect-fail", DefaultCLIOptions()); err == nil {
		t.Fatalf("expected ping error")
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	want := errors.New("boom")
	if err := WithTx(context.Background(), database, func(*sql.Tx) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_PING_TIMEOUT", "2s")
	t.Setenv("DB_MAX_IDLE_CONNS", "nope")
	opts := OptionsFromEnv(DefaultServerOptions())
	if opts.MaxOpenConns != 7 || opts.PingTimeout != 2*time.Second || opts.MaxIdleConns != 5 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
