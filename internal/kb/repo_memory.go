package kb

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	docs  map[string]Document
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document, first Version) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.Versions = []Version{first}
	r.docs[doc.ID] = doc
	r.order = append(r.order, doc.ID)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, copyDocument(r.docs[id]))
	}
	return out, nil
}

func (r *MemoryRepo) Apply(ctx context.Context, change Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.docs[change.Document.ID]
	if !ok {
		return ErrNotFound
	}
	doc := change.Document
	doc.Versions = append([]Version(nil), existing.Versions...)
	if change.NewVersion != nil {
		doc.Versions = append(doc.Versions, *change.NewVersion)
	}
	for i := range doc.Versions {
		if status, ok := change.VersionStatus[doc.Versions[i].ID]; ok {
			doc.Versions[i].Status = status
		}
	}
	sort.Slice(doc.Versions, func(i, j int) bool { return doc.Versions[i].Version < doc.Versions[j].Version })
	r.docs[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) ListPublished(ctx context.Context) ([]Published, error) {
	docs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Published
	for _, doc := range docs {
		if doc.Status == StatusArchived {
			continue
		}
		if v, ok := doc.Current(); ok {
			out = append(out, Published{Document: doc, Version: v})
		}
	}
	return out, nil
}

func (r *MemoryRepo) TitleExists(ctx context.Context, title string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.docs {
		if doc.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) Counts(ctx context.Context) (Counts, error) {
	if err := ctx.Err(); err != nil {
		return Counts{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := Counts{Documents: len(r.docs)}
	for _, doc := range r.docs {
		if doc.Status == StatusPublished {
			c.Published++
		}
	}
	return c, nil
}

func copyDocument(doc Document) Document {
	doc.Versions = append([]Version(nil), doc.Versions...)
	if doc.CurrentVersionID != nil {
		id := *doc.CurrentVersionID
		doc.CurrentVersionID = &id
	}
	return doc
}
