package audit

import "time"

// Event is one recorded admin mutation. Hashes are SHA-256 of the
// serialized resource before and after the change.
type Event struct {
	ID             string    `json:"id"`
	ActorID        string    `json:"actor_id,omitempty"`
	Action         string    `json:"action"`
	ResourceType   string    `json:"resource_type"`
	ResourceID     string    `json:"resource_id"`
	BeforeHash     *string   `json:"before_hash"`
	AfterHash      *string   `json:"after_hash"`
	IPAddress      string    `json:"ip_address,omitempty"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Actor identifies who performed a mutation.
type Actor struct {
	UserID         string
	OrganizationID string
	IP             string
}

// Entry is the input to Recorder.Record. Before and After carry the raw
// state; only their hashes are stored.
type Entry struct {
	Actor        Actor
	Action       string
	ResourceType string
	ResourceID   string
	Before       *string
	After        *string
}
