package plans

import (
	"fmt"
	"time"

	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/generator"
)

// Policy controls optional merge behavior.
type Policy struct {
	// DedupeRisks drops rule findings whose id the generator already
	// produced. Off by default: both entries are kept.
	DedupeRisks bool
}

// Merge appends rule findings to the generator risks and snippet sources
// to the generator sources, fills a missing timestamp and validates the
// result against the plan schema.
func Merge(raw domain.RawPlan, ruleRisks []domain.RiskItem, snippets []domain.Snippet, now time.Time, policy Policy) (domain.Plan, error) {
	if raw == nil {
		return domain.Plan{}, fmt.Errorf("%w: plan is empty", domain.ErrSchemaValidation)
	}
	out := raw.Clone()

	risks, err := listValue(out, "risks")
	if err != nil {
		return domain.Plan{}, err
	}
	if policy.DedupeRisks {
		ruleRisks = withoutKnownIDs(risks, ruleRisks)
	}
	ruleRaw, err := domain.ToRawList(ruleRisks)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("%w: %v", domain.ErrSchemaValidation, err)
	}
	out["risks"] = append(risks, ruleRaw...)

	sources, err := listValue(out, "sources")
	if err != nil {
		return domain.Plan{}, err
	}
	refs := make([]domain.SourceRef, 0, len(snippets))
	for _, s := range snippets {
		refs = append(refs, s.Source())
	}
	refRaw, err := domain.ToRawList(refs)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("%w: %v", domain.ErrSchemaValidation, err)
	}
	sources = append(sources, refRaw...)
	if len(sources) == 0 {
		fallback, err := domain.ToRawList([]domain.SourceRef{generator.FallbackSource})
		if err != nil {
			return domain.Plan{}, fmt.Errorf("%w: %v", domain.ErrSchemaValidation, err)
		}
		sources = fallback
	}
	out["sources"] = sources

	if v, ok := out["generated_at"]; !ok || v == nil {
		out["generated_at"] = generator.Timestamp(now)
	}
	return domain.DecodePlan(out)
}

// listValue returns a copy of the list under key. A missing or null value
// is an empty list.
func listValue(raw domain.RawPlan, key string) ([]any, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return []any{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected array", domain.ErrSchemaValidation, key)
	}
	return append(make([]any, 0, len(items)), items...), nil
}

func withoutKnownIDs(existing []any, risks []domain.RiskItem) []domain.RiskItem {
	known := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		if obj, ok := item.(map[string]any); ok {
			if id, ok := obj["id"].(string); ok {
				known[id] = struct{}{}
			}
		}
	}
	out := make([]domain.RiskItem, 0, len(risks))
	for _, r := range risks {
		if _, dup := known[r.ID]; dup {
			continue
		}
		out = append(out, r)
	}
	return out
}
