package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/llm"
	"visaverse-backend/internal/shared/metrics"
	"visaverse-backend/internal/shared/telemetry"
)

const (
	planTemperature   = 0.2
	snippetExcerptLen = 400
)

var planPrompt = template.Must(template.New("plan_v1").Parse(mustTemplate("plan_v1")))

func mustTemplate(name string) string {
	text, ok := llm.PromptTemplate(name)
	if !ok {
		panic("missing prompt template " + name)
	}
	return text
}

// Generator produces raw plan data. Completion mode is used only when
// Enabled is set and a client is present.
type Generator struct {
	Client  llm.Client
	Enabled bool
	Timeout time.Duration
	Now     func() time.Time
}

func New(client llm.Client, enabled bool, timeout time.Duration) *Generator {
	return &Generator{Client: client, Enabled: enabled, Timeout: timeout, Now: time.Now}
}

// Generate never fails: completion errors fall back to the deterministic
// plan and are reported through Result.Fallback.
func (g *Generator) Generate(ctx context.Context, profile domain.Profile, snippets []domain.Snippet) Result {
	fallback := func() domain.RawPlan { return g.Deterministic(profile, snippets) }
	if !g.Enabled || g.Client == nil {
		return Result{Plan: fallback(), Mode: ModeDeterministic}
	}

	start := time.Now()
	res := g.complete(ctx, profile, snippets).OrElse(fallback)
	if res.Fallback != nil {
		reason := llm.Reason(res.Fallback)
		metrics.IncGenerationFallback(reason)
		telemetry.Warn("plan.generate.fallback", map[string]any{
			"provider":   g.Client.Provider(),
			"reason":     reason,
			"latency_ms": time.Since(start).Milliseconds(),
			"err":        res.Fallback,
		})
	}
	return res
}

// Deterministic builds the template plan for the profile language. Without
// snippets the global guidance source is cited.
func (g *Generator) Deterministic(profile domain.Profile, snippets []domain.Snippet) domain.RawPlan {
	t := TemplateFor(profile.Language)
	sources := make([]domain.SourceRef, 0, len(snippets))
	for _, s := range snippets {
		sources = append(sources, s.Source())
	}
	if len(sources) == 0 {
		sources = append(sources, FallbackSource)
	}
	plan := domain.Plan{
		Summary:     t.Summary,
		Timeline:    t.Timeline,
		Checklist:   t.Checklist,
		Documents:   t.Documents,
		Risks:       t.Risks,
		Sources:     sources,
		GeneratedAt: Timestamp(g.now()),
	}
	// Plain strings and numbers only, so marshaling cannot fail.
	raw, _ := domain.ToRaw(plan)
	return raw
}

func (g *Generator) complete(ctx context.Context, profile domain.Profile, snippets []domain.Snippet) Result {
	prompt, err := BuildPrompt(profile, snippets)
	if err != nil {
		return Result{Err: err}
	}
	text, err := g.Client.Complete(ctx, llm.Request{
		System:      llm.PlanSystemPrompt,
		Prompt:      prompt,
		Temperature: planTemperature,
		JSON:        true,
		Timeout:     g.Timeout,
	})
	if err != nil {
		return Result{Err: err}
	}
	raw, err := ParseRaw(text)
	if err != nil {
		return Result{Err: err}
	}
	if _, ok := raw["generated_at"]; !ok {
		raw["generated_at"] = Timestamp(g.now())
	}
	return Result{Plan: raw, Mode: ModeCompletion}
}

// ParseRaw decodes a completion response into a JSON object. Code fences
// around the object are tolerated.
func ParseRaw(text string) (domain.RawPlan, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	var raw domain.RawPlan
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrParse, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", llm.ErrParse)
	}
	return raw, nil
}

type promptData struct {
	Profile      domain.Profile
	Notes        string
	LanguageName string
	Snippets     []domain.Snippet
}

// BuildPrompt renders the plan instruction with excerpts of each snippet.
func BuildPrompt(profile domain.Profile, snippets []domain.Snippet) (string, error) {
	data := promptData{
		Profile:      profile,
		LanguageName: TemplateFor(profile.Language).LanguageName,
		Snippets:     make([]domain.Snippet, 0, len(snippets)),
	}
	if profile.Notes != nil {
		data.Notes = strings.TrimSpace(*profile.Notes)
	}
	for _, s := range snippets {
		s.Content = Excerpt(s.Content, snippetExcerptLen)
		data.Snippets = append(data.Snippets, s)
	}
	var buf bytes.Buffer
	if err := planPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render plan prompt: %w", err)
	}
	return buf.String(), nil
}

// Excerpt truncates s to at most n runes.
func Excerpt(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Timestamp formats t as an ISO-8601 UTC string.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}
