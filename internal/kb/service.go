package kb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"visaverse-backend/internal/audit"
	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/shared/telemetry"
)

// Auditor records admin mutations.
type Auditor interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service runs the editorial workflow: draft → review → published, with
// archive from any live state.
type Service struct {
	Repo  Repo
	Audit Auditor
	Now   func() time.Time
}

func NewService(repo Repo, auditor Auditor) *Service {
	return &Service{Repo: repo, Audit: auditor, Now: time.Now}
}

type CreateInput struct {
	Title              string `json:"title"`
	Content            string `json:"content"`
	OriginCountry      string `json:"origin_country"`
	DestinationCountry string `json:"destination_country"`
	Purpose            string `json:"purpose"`
	Language           string `json:"language"`
	Tags               string `json:"tags"`
}

type UpdateInput struct {
	Content string `json:"content"`
	Notes   string `json:"notes"`
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.Repo.Counts(ctx)
}

// Create stores a new draft document with version 1.
func (s *Service) Create(ctx context.Context, actor audit.Actor, input CreateInput) (Document, error) {
	doc, first, err := s.newDocument(actor, input, StatusDraft)
	if err != nil {
		return Document{}, err
	}
	if err := s.Repo.Create(ctx, doc, first); err != nil {
		return Document{}, err
	}
	doc.Versions = []Version{first}
	s.record(ctx, actor, "kb.create", doc.ID, nil, &first.Content)
	return doc, nil
}

// Import stores a document directly as published version 1. It reports
// false when a document with the same title already exists.
func (s *Service) Import(ctx context.Context, actor audit.Actor, input CreateInput) (Document, bool, error) {
	exists, err := s.Repo.TitleExists(ctx, strings.TrimSpace(input.Title))
	if err != nil {
		return Document{}, false, err
	}
	if exists {
		return Document{}, false, nil
	}
	doc, first, err := s.newDocument(actor, input, StatusPublished)
	if err != nil {
		return Document{}, false, err
	}
	doc.CurrentVersionID = &first.ID
	if err := s.Repo.Create(ctx, doc, first); err != nil {
		return Document{}, false, err
	}
	doc.Versions = []Version{first}
	s.record(ctx, actor, "kb.create", doc.ID, nil, &first.Content)
	return doc, true, nil
}

// Update adds a draft version. A previously published version stays live
// until the new one is published.
func (s *Service) Update(ctx context.Context, actor audit.Actor, id string, input UpdateInput) (Document, error) {
	if strings.TrimSpace(input.Content) == "" {
		return Document{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if doc.Status == StatusArchived {
		return Document{}, transitionError(doc.Status, StatusDraft)
	}
	latest, _ := doc.Latest()
	now := s.now()
	next := Version{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Version:    latest.Version + 1,
		Status:     StatusDraft,
		Content:    input.Content,
		Notes:      strings.TrimSpace(input.Notes),
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
	}
	change := Change{NewVersion: &next}
	// An unpublished draft or review version is replaced in the queue.
	if latest.ID != "" && (latest.Status == StatusDraft || latest.Status == StatusReview) && !isCurrent(doc, latest.ID) {
		change.VersionStatus = map[string]Status{latest.ID: StatusSuperseded}
	}
	doc.Status = StatusDraft
	doc.UpdatedAt = now
	change.Document = doc
	if err := s.Repo.Apply(ctx, change); err != nil {
		return Document{}, err
	}
	s.record(ctx, actor, "kb.update", doc.ID, &latest.Content, &next.Content)
	return s.Repo.Get(ctx, id)
}

// Submit moves a draft into review.
func (s *Service) Submit(ctx context.Context, actor audit.Actor, id string) (Document, error) {
	return s.transition(ctx, actor, id, "kb.submit", StatusDraft, StatusReview, func(doc *Document, latest Version, change *Change) {
		change.VersionStatus = map[string]Status{latest.ID: StatusReview}
	})
}

// Publish makes the latest version live.
func (s *Service) Publish(ctx context.Context, actor audit.Actor, id string) (Document, error) {
	return s.transition(ctx, actor, id, "kb.publish", StatusReview, StatusPublished, func(doc *Document, latest Version, change *Change) {
		statuses := map[string]Status{latest.ID: StatusPublished}
		if doc.CurrentVersionID != nil && *doc.CurrentVersionID != latest.ID {
			statuses[*doc.CurrentVersionID] = StatusSuperseded
		}
		change.VersionStatus = statuses
		current := latest.ID
		doc.CurrentVersionID = &current
	})
}

// Archive removes a document from retrieval.
func (s *Service) Archive(ctx context.Context, actor audit.Actor, id string) (Document, error) {
	return s.transition(ctx, actor, id, "kb.archive", "", StatusArchived, nil)
}

func (s *Service) transition(ctx context.Context, actor audit.Actor, id, action string, from, to Status, mutate func(*Document, Version, *Change)) (Document, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if doc.Status == StatusArchived || (from != "" && doc.Status != from) {
		return Document{}, transitionError(doc.Status, to)
	}
	latest, ok := doc.Latest()
	if !ok && to != StatusArchived {
		return Document{}, fmt.Errorf("%w: document has no versions", ErrInvalidTransition)
	}
	before := string(doc.Status)
	change := Change{}
	if mutate != nil {
		mutate(&doc, latest, &change)
	}
	doc.Status = to
	doc.UpdatedAt = s.now()
	change.Document = doc
	if err := s.Repo.Apply(ctx, change); err != nil {
		return Document{}, err
	}
	after := string(to)
	s.record(ctx, actor, action, doc.ID, &before, &after)
	return s.Repo.Get(ctx, id)
}

func (s *Service) newDocument(actor audit.Actor, input CreateInput, status Status) (Document, Version, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Content) == "" {
		return Document{}, Version{}, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}
	purpose := strings.ToUpper(strings.TrimSpace(input.Purpose))
	if purpose != "" && !domain.Purpose(purpose).Valid() {
		return Document{}, Version{}, fmt.Errorf("%w: unknown purpose %q", ErrInvalidInput, input.Purpose)
	}
	language := strings.ToUpper(strings.TrimSpace(input.Language))
	if language != "" && !domain.Language(language).Valid() {
		return Document{}, Version{}, fmt.Errorf("%w: unknown language %q", ErrInvalidInput, input.Language)
	}
	now := s.now()
	doc := Document{
		ID:                 uuid.NewString(),
		Title:              title,
		Status:             status,
		OriginCountry:      strings.TrimSpace(input.OriginCountry),
		DestinationCountry: strings.TrimSpace(input.DestinationCountry),
		Purpose:            purpose,
		Language:           language,
		Tags:               strings.TrimSpace(input.Tags),
		OrganizationID:     actor.OrganizationID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	first := Version{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Version:    1,
		Status:     status,
		Content:    input.Content,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
	}
	return doc, first, nil
}

func (s *Service) record(ctx context.Context, actor audit.Actor, action, id string, before, after *string) {
	if s.Audit == nil {
		return
	}
	err := s.Audit.Record(ctx, audit.Entry{
		Actor:        actor,
		Action:       action,
		ResourceType: "kb_document",
		ResourceID:   id,
		Before:       before,
		After:        after,
	})
	if err != nil {
		telemetry.Error("audit.record.failed", map[string]any{"action": action, "resource_id": id, "err": err})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func isCurrent(doc Document, versionID string) bool {
	return doc.CurrentVersionID != nil && *doc.CurrentVersionID == versionID
}

func transitionError(from, to Status) error {
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}
