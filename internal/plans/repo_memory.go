package plans

import (
	"context"
	"sync"
)

type MemoryRunRepo struct {
	mu   sync.RWMutex
	runs []Run
}

func NewMemoryRunRepo() *MemoryRunRepo {
	return &MemoryRunRepo{}
}

func (r *MemoryRunRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *MemoryRunRepo) CountByMode(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int)
	for _, run := range r.runs {
		out[run.Mode]++
	}
	return out, nil
}

// List returns runs in insertion order.
func (r *MemoryRunRepo) List() []Run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Run(nil), r.runs...)
}
