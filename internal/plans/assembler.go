package plans

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/generator"
	"visaverse-backend/internal/llm"
	"visaverse-backend/internal/shared/metrics"
	"visaverse-backend/internal/shared/telemetry"
)

type Retriever interface {
	Retrieve(ctx context.Context, profile domain.Profile, k int) ([]domain.Snippet, error)
}

type Generator interface {
	Generate(ctx context.Context, profile domain.Profile, snippets []domain.Snippet) generator.Result
}

type RiskEvaluator interface {
	Evaluate(profile domain.Profile) []domain.RiskItem
}

// Assembler builds validated plans: retrieval then generation, with rule
// evaluation running alongside.
type Assembler struct {
	Retriever   Retriever
	Generator   Generator
	Rules       RiskEvaluator
	MaxSnippets int
	Policy      Policy
	Runs        RunRepo
	Now         func() time.Time
}

// Outcome is a built plan plus how it was produced.
type Outcome struct {
	Plan           domain.Plan
	Mode           generator.Mode
	FallbackReason string
	Snippets       []domain.Snippet
	Latency        time.Duration
}

// BuildPlan returns the validated plan for profile.
func (a *Assembler) BuildPlan(ctx context.Context, profile domain.Profile) (domain.Plan, error) {
	out, err := a.Build(ctx, profile, "")
	if err != nil {
		return domain.Plan{}, err
	}
	return out.Plan, nil
}

// Build runs the pipeline and records a plan run. organizationID is an
// advisory tag stored on the run.
func (a *Assembler) Build(ctx context.Context, profile domain.Profile, organizationID string) (Outcome, error) {
	start := time.Now()
	var (
		snippets  []domain.Snippet
		generated generator.Result
		ruleRisks []domain.RiskItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snippets = a.retrieve(gctx, profile)
		generated = a.Generator.Generate(gctx, profile, snippets)
		return nil
	})
	g.Go(func() error {
		ruleRisks = a.Rules.Evaluate(profile)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}
	if generated.Err != nil {
		return Outcome{}, generated.Err
	}

	plan, err := Merge(generated.Plan, ruleRisks, snippets, a.now(), a.Policy)
	if err != nil {
		metrics.IncPlanValidationFailure()
		telemetry.Error("plan.validation.failed", map[string]any{"mode": string(generated.Mode), "err": err})
		return Outcome{}, err
	}

	out := Outcome{
		Plan:           plan,
		Mode:           generated.Mode,
		FallbackReason: llm.Reason(generated.Fallback),
		Snippets:       snippets,
		Latency:        time.Since(start),
	}
	metrics.IncPlanBuilt(string(out.Mode))
	metrics.ObservePlanDuration(string(out.Mode), out.Latency.Seconds())
	telemetry.Info("plan.built", map[string]any{
		"mode":       string(out.Mode),
		"snippets":   len(snippets),
		"risks":      len(plan.Risks),
		"latency_ms": out.Latency.Milliseconds(),
	})
	a.record(ctx, out, organizationID)
	return out, nil
}

// retrieve treats a store failure like an empty result so that the plan
// still cites the fallback source.
func (a *Assembler) retrieve(ctx context.Context, profile domain.Profile) []domain.Snippet {
	if a.Retriever == nil {
		return nil
	}
	snippets, err := a.Retriever.Retrieve(ctx, profile, a.MaxSnippets)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			telemetry.Warn("plan.retrieve.failed", map[string]any{"err": err})
		}
		return nil
	}
	metrics.ObserveSnippets(len(snippets))
	return snippets
}

func (a *Assembler) record(ctx context.Context, out Outcome, organizationID string) {
	if a.Runs == nil {
		return
	}
	run := NewRun(out, organizationID, a.now())
	if err := a.Runs.Create(ctx, run); err != nil {
		telemetry.Error("plan.run.record_failed", map[string]any{"run_id": run.ID, "err": err})
	}
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
