package kb

import (
	"context"
	"io"
	"sync"

	"visaverse-backend/internal/extract"
	"visaverse-backend/internal/shared/storage/object"
	"visaverse-backend/internal/shared/telemetry"
)

// StoreSource parses every supported file of an object store once and
// serves the cached passages afterwards.
type StoreSource struct {
	Store object.Store

	mu       sync.Mutex
	loaded   bool
	passages []Passage
}

func NewStoreSource(store object.Store) *StoreSource {
	return &StoreSource{Store: store}
}

func (s *StoreSource) Passages(ctx context.Context) ([]Passage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.passages, nil
	}
	passages, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.passages = passages
	s.loaded = true
	telemetry.Info("kb.store.loaded", map[string]any{"passages": len(passages)})
	return passages, nil
}

// Reload drops the cache so the next call rereads the store. A failed or
// cancelled load leaves the cache empty rather than caching partial results.
func (s *StoreSource) Reload() {
	s.mu.Lock()
	s.loaded = false
	s.passages = nil
	s.mu.Unlock()
}

func (s *StoreSource) load(ctx context.Context) ([]Passage, error) {
	objects, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Passage, 0, len(objects))
	for _, obj := range objects {
		if !extract.Supported(obj.Key) {
			continue
		}
		p, err := s.read(ctx, obj.Key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			telemetry.Warn("kb.store.skip", map[string]any{"key": obj.Key, "err": err})
			continue
		}
		out = append(out, p)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StoreSource) read(ctx context.Context, key string) (Passage, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return Passage{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return Passage{}, err
	}
	res, err := extract.FromBytes(ctx, data, key)
	if err != nil {
		return Passage{}, err
	}
	return ParsePassage(key, res.Text, res.Meta), nil
}

// MultiSource concatenates sources in order. A failing source is logged
// and skipped.
type MultiSource []Source

func (m MultiSource) Passages(ctx context.Context) ([]Passage, error) {
	var out []Passage
	for i, src := range m {
		if src == nil {
			continue
		}
		passages, err := src.Passages(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			telemetry.Warn("kb.source.failed", map[string]any{"source": i, "err": err})
			continue
		}
		out = append(out, passages...)
	}
	return out, nil
}
