package kb

import (
	"context"
	"sort"
	"strings"

	"visaverse-backend/internal/domain"
)

// Source enumerates passages in a stable order.
type Source interface {
	Passages(ctx context.Context) ([]Passage, error)
}

// Retriever ranks passages from a Source against a profile.
type Retriever struct {
	Source Source
}

func NewRetriever(source Source) *Retriever {
	return &Retriever{Source: source}
}

type scored struct {
	passage Passage
	score   int
}

// Retrieve returns at most k snippets with a strictly positive score,
// highest first. Ties keep enumeration order.
func (r *Retriever) Retrieve(ctx context.Context, profile domain.Profile, k int) ([]domain.Snippet, error) {
	if k <= 0 || r == nil || r.Source == nil {
		return []domain.Snippet{}, nil
	}
	passages, err := r.Source.Passages(ctx)
	if err != nil {
		return nil, err
	}

	keywords := Keywords(profile)
	ranked := make([]scored, 0, len(passages))
	for _, p := range passages {
		if !p.Filter.Matches(profile) {
			continue
		}
		ranked = append(ranked, scored{passage: p, score: Score(p.Body, keywords)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]domain.Snippet, 0, k)
	for _, s := range ranked {
		if s.score <= 0 || len(out) == k {
			break
		}
		out = append(out, domain.Snippet{
			Title:    s.passage.Title,
			Ref:      s.passage.Ref,
			Content:  s.passage.Body,
			Metadata: s.passage.Filter.Meta(),
			Score:    s.score,
		})
	}
	return out, nil
}

// Keywords are the lower-cased origin, destination and purpose.
func Keywords(p domain.Profile) []string {
	return []string{
		strings.ToLower(p.OriginCountry),
		strings.ToLower(p.DestinationCountry),
		strings.ToLower(string(p.Purpose)),
	}
}

// Score sums the non-overlapping occurrences of each keyword in body,
// ignoring case. Empty keywords count nothing.
func Score(body string, keywords []string) int {
	lower := strings.ToLower(body)
	total := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		total += strings.Count(lower, kw)
	}
	return total
}
