package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"visaverse-backend/internal/shared/util"
)

// MaxListLimit caps how many events a single list call returns.
const MaxListLimit = 200

type Recorder struct {
	Repo Repo
	Now  func() time.Time
}

func NewRecorder(repo Repo) *Recorder {
	return &Recorder{Repo: repo, Now: time.Now}
}

// Record hashes the before/after state and stores the event.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if r == nil || r.Repo == nil {
		return errors.New("audit recorder not configured")
	}
	if strings.TrimSpace(entry.Action) == "" || strings.TrimSpace(entry.ResourceType) == "" {
		return errors.New("audit action and resource type are required")
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return r.Repo.Create(ctx, Event{
		ID:             uuid.NewString(),
		ActorID:        entry.Actor.UserID,
		Action:         entry.Action,
		ResourceType:   entry.ResourceType,
		ResourceID:     entry.ResourceID,
		BeforeHash:     util.HashOptional(entry.Before),
		AfterHash:      util.HashOptional(entry.After),
		IPAddress:      entry.Actor.IP,
		OrganizationID: entry.Actor.OrganizationID,
		CreatedAt:      now().UTC(),
	})
}

// List returns the newest events first, at most MaxListLimit.
func (r *Recorder) List(ctx context.Context, limit int) ([]Event, error) {
	if r == nil || r.Repo == nil {
		return nil, errors.New("audit recorder not configured")
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	return r.Repo.List(ctx, limit)
}
