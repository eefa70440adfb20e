package plans

import (
	"context"
	"time"

	"github.com/google/uuid"

	"visaverse-backend/internal/domain"
)

// Run records one successful plan build.
type Run struct {
	ID             string             `json:"id"`
	Mode           string             `json:"mode"`
	FallbackReason string             `json:"fallback_reason,omitempty"`
	LatencyMS      int64              `json:"latency_ms"`
	RiskCount      int                `json:"risk_count"`
	Sources        []domain.SourceRef `json:"sources"`
	OrganizationID string             `json:"organization_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

func NewRun(out Outcome, organizationID string, now time.Time) Run {
	return Run{
		ID:             uuid.NewString(),
		Mode:           string(out.Mode),
		FallbackReason: out.FallbackReason,
		LatencyMS:      out.Latency.Milliseconds(),
		RiskCount:      len(out.Plan.Risks),
		Sources:        out.Plan.Sources,
		OrganizationID: organizationID,
		CreatedAt:      now.UTC(),
	}
}

type RunRepo interface {
	Create(ctx context.Context, run Run) error
	CountByMode(ctx context.Context) (map[string]int, error)
}
