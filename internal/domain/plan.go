package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

type Summary struct {
	Title       string   `json:"title"`
	KeyAdvice   []string `json:"key_advice"`
	Assumptions []string `json:"assumptions"`
	Confidence  float64  `json:"confidence"`
}

type TimelineItem struct {
	When     string   `json:"when"`
	Actions  []string `json:"actions"`
	Priority Priority `json:"priority"`
}

// ChecklistItem dependencies reference other checklist item ids. The graph
// is expected to be acyclic but is not checked here.
type ChecklistItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Steps         []string `json:"steps"`
	Priority      Priority `json:"priority"`
	EstimatedTime string   `json:"estimated_time"`
	Dependencies  []string `json:"dependencies"`
}

type DocumentItem struct {
	Name           string   `json:"name"`
	Why            string   `json:"why"`
	Priority       Priority `json:"priority"`
	CommonMistakes []string `json:"common_mistakes"`
}

type DocumentCategory struct {
	Category string         `json:"category"`
	Items    []DocumentItem `json:"items"`
}

type RiskItem struct {
	ID           string   `json:"id"`
	Risk         string   `json:"risk"`
	WhyItMatters string   `json:"why_it_matters"`
	Mitigation   []string `json:"mitigation"`
	Severity     Severity `json:"severity"`
}

type SourceRef struct {
	Title string `json:"title"`
	Ref   string `json:"ref"`
}

// Plan is the validated preparation plan returned to callers.
type Plan struct {
	Summary     Summary            `json:"summary"`
	Timeline    []TimelineItem     `json:"timeline"`
	Checklist   []ChecklistItem    `json:"checklist"`
	Documents   []DocumentCategory `json:"documents"`
	Risks       []RiskItem         `json:"risks"`
	Sources     []SourceRef        `json:"sources"`
	GeneratedAt string             `json:"generated_at"`
}

// DocumentMeta is the optional structured metadata attached to a knowledge
// base document.
type DocumentMeta struct {
	OriginCountry      string   `json:"origin_country,omitempty"`
	DestinationCountry string   `json:"destination_country,omitempty"`
	Purpose            string   `json:"purpose,omitempty"`
	Language           string   `json:"language,omitempty"`
	Tags               []string `json:"tags,omitempty"`
}

// Empty reports whether no metadata field is set.
func (m DocumentMeta) Empty() bool {
	return m.OriginCountry == "" && m.DestinationCountry == "" && m.Purpose == "" && m.Language == "" && len(m.Tags) == 0
}

// Snippet is a scored knowledge base excerpt produced per retrieval call.
type Snippet struct {
	Title    string        `json:"title"`
	Ref      string        `json:"ref"`
	Content  string        `json:"content"`
	Metadata *DocumentMeta `json:"metadata,omitempty"`
	Score    int           `json:"score"`
}

// Source returns the reference a plan cites for this snippet.
func (s Snippet) Source() SourceRef {
	return SourceRef{Title: s.Title, Ref: s.Ref}
}

// RawPlan is plan data that has not been checked against the Plan schema.
type RawPlan map[string]any

// ToRaw converts a typed value into its generic JSON form.
func ToRaw(v any) (RawPlan, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var raw RawPlan
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ToRawList converts each element of items into its generic JSON form.
func ToRawList[T any](items []T) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, err
		}
		out = append(out, generic)
	}
	return out, nil
}

// Clone copies the top-level keys; nested values are shared.
func (r RawPlan) Clone() RawPlan {
	out := make(RawPlan, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Validate checks enum literals and the confidence range.
func (p Plan) Validate() error {
	c := p.Summary.Confidence
	if math.IsNaN(c) || c < 0 || c > 1 {
		return fmt.Errorf("summary.confidence: %v out of range [0,1]", c)
	}
	for i, item := range p.Timeline {
		if !item.Priority.Valid() {
			return fmt.Errorf("timeline[%d].priority: invalid value %q", i, item.Priority)
		}
	}
	for i, item := range p.Checklist {
		if !item.Priority.Valid() {
			return fmt.Errorf("checklist[%d].priority: invalid value %q", i, item.Priority)
		}
	}
	for i, cat := range p.Documents {
		for j, item := range cat.Items {
			if !item.Priority.Valid() {
				return fmt.Errorf("documents[%d].items[%d].priority: invalid value %q", i, j, item.Priority)
			}
		}
	}
	for i, risk := range p.Risks {
		if !risk.Severity.Valid() {
			return fmt.Errorf("risks[%d].severity: invalid value %q", i, risk.Severity)
		}
	}
	return nil
}

// normalize replaces nil optional lists with empty ones so that a decoded
// plan serializes the same way regardless of which keys were omitted.
func (p *Plan) normalize() {
	p.Summary.KeyAdvice = nonNil(p.Summary.KeyAdvice)
	p.Summary.Assumptions = nonNil(p.Summary.Assumptions)
	if p.Timeline == nil {
		p.Timeline = []TimelineItem{}
	}
	for i := range p.Timeline {
		p.Timeline[i].Actions = nonNil(p.Timeline[i].Actions)
	}
	if p.Checklist == nil {
		p.Checklist = []ChecklistItem{}
	}
	for i := range p.Checklist {
		p.Checklist[i].Steps = nonNil(p.Checklist[i].Steps)
		p.Checklist[i].Dependencies = nonNil(p.Checklist[i].Dependencies)
	}
	if p.Documents == nil {
		p.Documents = []DocumentCategory{}
	}
	for i := range p.Documents {
		if p.Documents[i].Items == nil {
			p.Documents[i].Items = []DocumentItem{}
		}
		for j := range p.Documents[i].Items {
			p.Documents[i].Items[j].CommonMistakes = nonNil(p.Documents[i].Items[j].CommonMistakes)
		}
	}
	if p.Risks == nil {
		p.Risks = []RiskItem{}
	}
	for i := range p.Risks {
		p.Risks[i].Mitigation = nonNil(p.Risks[i].Mitigation)
	}
	if p.Sources == nil {
		p.Sources = []SourceRef{}
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
