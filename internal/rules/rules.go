package rules

import (
	"time"

	"visaverse-backend/internal/domain"
)

const (
	TightDepartureDays = 30
	MinPassportDays    = 180
)

// Check is one independent rule. Evaluate returns nil when the profile
// does not trigger it.
type Check struct {
	ID       string
	Evaluate func(p domain.Profile, today domain.Date) *domain.RiskItem
}

// DefaultChecks are evaluated in this order.
func DefaultChecks() []Check {
	return []Check{
		{ID: "tight_departure", Evaluate: tightDeparture},
		{ID: "passport_expiry", Evaluate: passportExpiry},
		{ID: "funds_low", Evaluate: fundsLow},
	}
}

// Engine runs checks against a profile. Now is injectable for tests.
type Engine struct {
	Checks []Check
	Now    func() time.Time
}

func NewEngine() *Engine {
	return &Engine{Checks: DefaultChecks(), Now: time.Now}
}

// Evaluate concatenates every finding in check order without deduplication.
func (e *Engine) Evaluate(p domain.Profile) []domain.RiskItem {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return e.EvaluateAt(p, domain.DateOf(now()))
}

// EvaluateAt is Evaluate with an explicit reference date.
func (e *Engine) EvaluateAt(p domain.Profile, today domain.Date) []domain.RiskItem {
	out := []domain.RiskItem{}
	for _, c := range e.Checks {
		if c.Evaluate == nil {
			continue
		}
		if risk := c.Evaluate(p, today); risk != nil {
			out = append(out, *risk)
		}
	}
	return out
}

func tightDeparture(p domain.Profile, today domain.Date) *domain.RiskItem {
	if today.DaysUntil(p.PlannedDepartureDate) >= TightDepartureDays {
		return nil
	}
	return finding("tight_departure", p.Language)
}

func passportExpiry(p domain.Profile, _ domain.Date) *domain.RiskItem {
	if p.PlannedDepartureDate.DaysUntil(p.PassportExpiryDate) >= MinPassportDays {
		return nil
	}
	return finding("passport_expiry", p.Language)
}

func fundsLow(p domain.Profile, _ domain.Date) *domain.RiskItem {
	if p.Purpose != domain.PurposeStudy || p.ProofOfFundsLevel != domain.PriorityLow {
		return nil
	}
	return finding("funds_low", p.Language)
}

func finding(id string, lang domain.Language) *domain.RiskItem {
	t := textFor(id, lang)
	return &domain.RiskItem{
		ID:           id,
		Risk:         t.risk,
		WhyItMatters: t.why,
		Mitigation:   append([]string(nil), t.mitigation...),
		Severity:     domain.SeverityHigh,
	}
}
