package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		want string
	}{
		{name: "memory", db: nil, want: "memory"},
		{name: "ok", db: pingFunc(func(context.Context) error { return nil }), want: "ok"},
		{name: "down", db: pingFunc(func(context.Context) error { return errors.New("refused") }), want: "unavailable"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := NewService(tt.db).Status(context.Background())
			if got.Status != "ok" || got.Database != tt.want {
				t.Fatalf("status = %+v", got)
			}
		})
	}
}
