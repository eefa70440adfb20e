package admin

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"visaverse-backend/internal/kb"
)

type KBCounter interface {
	Counts(ctx context.Context) (kb.Counts, error)
}

type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

type AuditCounter interface {
	Count(ctx context.Context) (int, error)
}

type RunCounter interface {
	CountByMode(ctx context.Context) (map[string]int, error)
}

// Summary is the admin dashboard snapshot.
type Summary struct {
	KBDocuments int            `json:"kb_documents"`
	Published   int            `json:"published_documents"`
	Users       int            `json:"users"`
	AuditEvents int            `json:"audit_events"`
	PlanRuns    int            `json:"plan_runs"`
	RunsByMode  map[string]int `json:"plan_runs_by_mode"`
	Timestamp   time.Time      `json:"timestamp"`
}

type Service struct {
	KB    KBCounter
	Users UserCounter
	Runs  RunCounter
	Audit AuditCounter
	Now   func() time.Time
}

func NewService(kbCounter KBCounter, users UserCounter, runs RunCounter, auditEvents AuditCounter) *Service {
	return &Service{KB: kbCounter, Users: users, Runs: runs, Audit: auditEvents, Now: time.Now}
}

// Summary queries each store concurrently.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var (
		counts kb.Counts
		users  int
		events int
		byMode map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = s.KB.Counts(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.Users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		byMode, err = s.Runs.CountByMode(gctx)
		return err
	})
	if s.Audit != nil {
		g.Go(func() (err error) {
			events, err = s.Audit.Count(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	total := 0
	for _, n := range byMode {
		total += n
	}
	if byMode == nil {
		byMode = map[string]int{}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Summary{
		KBDocuments: counts.Documents,
		Published:   counts.Published,
		Users:       users,
		AuditEvents: events,
		PlanRuns:    total,
		RunsByMode:  byMode,
		Timestamp:   now().UTC(),
	}, nil
}
