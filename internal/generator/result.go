package generator

import "visaverse-backend/internal/domain"

type Mode string

const (
	ModeDeterministic Mode = "deterministic"
	ModeCompletion    Mode = "completion"
)

// Result is the outcome of one generation attempt. Fallback holds the
// completion error that was replaced by deterministic output, if any.
type Result struct {
	Plan     domain.RawPlan
	Mode     Mode
	Err      error
	Fallback error
}

// OrElse substitutes the deterministic builder when r failed.
func (r Result) OrElse(fallback func() domain.RawPlan) Result {
	if r.Err == nil {
		return r
	}
	return Result{Plan: fallback(), Mode: ModeDeterministic, Fallback: r.Err}
}
