package kb

import (
	"context"
	"fmt"
	"sync"
)

// PublishedLister returns the live version of every non-archived document.
type PublishedLister interface {
	ListPublished(ctx context.Context) ([]Published, error)
}

// PublishedSource serves admin-published documents to retrieval. Each
// version is parsed once; versions that are no longer live are evicted.
type PublishedSource struct {
	Lister PublishedLister

	mu    sync.Mutex
	cache map[string]Passage
}

func NewPublishedSource(lister PublishedLister) *PublishedSource {
	return &PublishedSource{Lister: lister, cache: make(map[string]Passage)}
}

func (s *PublishedSource) Passages(ctx context.Context) ([]Passage, error) {
	live, err := s.Lister.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		s.cache = make(map[string]Passage)
	}
	seen := make(map[string]struct{}, len(live))
	out := make([]Passage, 0, len(live))
	for _, p := range live {
		seen[p.Version.ID] = struct{}{}
		passage, ok := s.cache[p.Version.ID]
		if !ok {
			passage = publishedPassage(p)
			s.cache[p.Version.ID] = passage
		}
		out = append(out, passage)
	}
	for id := range s.cache {
		if _, ok := seen[id]; !ok {
			delete(s.cache, id)
		}
	}
	return out, nil
}

func publishedPassage(p Published) Passage {
	passage := ParsePassage("admin/"+p.Document.ID, p.Version.Content, p.Document.Meta())
	passage.Title = p.Document.Title
	passage.Ref = PublishedRef(p.Document.ID, p.Version.Version)
	return passage
}

// PublishedRef is the source reference cited for an admin document.
func PublishedRef(documentID string, version int) string {
	return fmt.Sprintf("kb/admin/%s@v%d", documentID, version)
}
