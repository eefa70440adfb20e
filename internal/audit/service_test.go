package audit

import (
	"context"
	"testing"
	"time"

	"visaverse-backend/internal/shared/util"
)

func TestRecordHashesStateAndListsNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := &Recorder{Repo: repo, Now: func() time.Time { clock = clock.Add(time.Minute); return clock }}
	ctx := context.Background()

	after := `{"status":"draft"}`
	if err := rec.Record(ctx, Entry{Actor: Actor{UserID: "u1", IP: "10.0.0.1"}, Action: "kb.create", ResourceType: "kb_document", ResourceID: "d1", After: &after}); err != nil {
		t.Fatalf("record create: %v", err)
	}
	next := `{"status":"review"}`
	if err := rec.Record(ctx, Entry{Actor: Actor{UserID: "u1"}, Action: "kb.submit", ResourceType: "kb_document", ResourceID: "d1", Before: &after, After: &next}); err != nil {
		t.Fatalf("record submit: %v", err)
	}

	events, err := rec.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 || events[0].Action != "kb.submit" {
		t.Fatalf("expected newest first, got %+v", events)
	}
	if events[1].BeforeHash != nil {
		t.Fatalf("create must not carry a before hash")
	}
	if *events[0].BeforeHash != util.HashContent(after) || *events[0].AfterHash != util.HashContent(next) {
		t.Fatalf("unexpected hashes: %+v", events[0])
	}
	if events[1].IPAddress != "10.0.0.1" {
		t.Fatalf("expected ip to be stored")
	}
}

func TestRecordRequiresAction(t *testing.T) {
	if err := NewRecorder(NewMemoryRepo()).Record(context.Background(), Entry{ResourceType: "user"}); err == nil {
		t.Fatalf("expected error for missing action")
	}
}

func TestListClampsLimit(t *testing.T) {
	repo := NewMemoryRepo()
	rec := NewRecorder(repo)
	for i := 0; i < MaxListLimit+5; i++ {
		if err := rec.Record(context.Background(), Entry{Action: "user.create", ResourceType: "user", ResourceID: "u"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	events, err := rec.List(context.Background(), 1000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != MaxListLimit {
		t.Fatalf("expected %d events, got %d", MaxListLimit, len(events))
	}
}
