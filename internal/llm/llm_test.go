package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: fmt.Errorf("x: %w", ErrTimeout), want: "timeout"},
		{err: context.DeadlineExceeded, want: "timeout"},
		{err: ErrNotConfigured, want: "not_configured"},
		{err: fmt.Errorf("y: %w", ErrParse), want: "parse"},
		{err: fmt.Errorf("z: %w", ErrTransport), want: "transport"},
		{err: errors.New("other"), want: "unknown"},
	}
	for _, tt := range tests {
		if got := Reason(tt.err); got != tt.want {
			t.Fatalf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestTransportClassifiesDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()
	if err := Transport(ctx, "p", errors.New("read failed")); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if err := Transport(context.Background(), "p", errors.New("refused")); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestPromptTemplates(t *testing.T) {
	for _, name := range []string{"plan_v1", "chat_v1"} {
		text, ok := PromptTemplate(name)
		if !ok || text == "" {
			t.Fatalf("expected template %s", name)
		}
	}
	if _, ok := PromptTemplate("nope"); ok {
		t.Fatalf("unexpected template")
	}
	if _, err := (PlaceholderClient{}).Complete(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
