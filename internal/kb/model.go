package kb

import (
	"errors"
	"time"
)

// Status is the editorial state of a document or version.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusReview     Status = "review"
	StatusPublished  Status = "published"
	StatusSuperseded Status = "superseded"
	StatusArchived   Status = "archived"
)

var (
	ErrNotFound          = errors.New("kb document not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidInput      = errors.New("invalid kb input")
)

// Document is an admin-managed knowledge base entry. CurrentVersionID
// points at the version served to retrieval.
type Document struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Status             Status    `json:"status"`
	CurrentVersionID   *string   `json:"current_version_id"`
	OriginCountry      string    `json:"origin_country,omitempty"`
	DestinationCountry string    `json:"destination_country,omitempty"`
	Purpose            string    `json:"purpose,omitempty"`
	Language           string    `json:"language,omitempty"`
	Tags               string    `json:"tags,omitempty"`
	OrganizationID     string    `json:"organization_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Versions           []Version `json:"versions"`
}

type Version struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Version    int       `json:"version"`
	Status     Status    `json:"status"`
	Content    string    `json:"content"`
	Notes      string    `json:"notes,omitempty"`
	CreatedBy  string    `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Latest returns the highest numbered version.
func (d Document) Latest() (Version, bool) {
	var latest Version
	found := false
	for _, v := range d.Versions {
		if !found || v.Version > latest.Version {
			latest = v
			found = true
		}
	}
	return latest, found
}

// Current returns the version served to retrieval, if any.
func (d Document) Current() (Version, bool) {
	if d.CurrentVersionID == nil {
		return Version{}, false
	}
	for _, v := range d.Versions {
		if v.ID == *d.CurrentVersionID {
			return v, true
		}
	}
	return Version{}, false
}

// Meta maps the structured columns onto front-matter keys.
func (d Document) Meta() map[string]string {
	return map[string]string{
		"origin_country":      d.OriginCountry,
		"destination_country": d.DestinationCountry,
		"purpose":             d.Purpose,
		"language":            d.Language,
		"tags":                d.Tags,
	}
}

// Published is the live version of one non-archived document.
type Published struct {
	Document Document
	Version  Version
}

// Counts summarizes the admin store.
type Counts struct {
	Documents int `json:"documents"`
	Published int `json:"published"`
}
