package kb

import "context"

// Change is applied atomically: the document row is updated, NewVersion is
// inserted when set, and each listed version gets its new status.
type Change struct {
	Document      Document
	NewVersion    *Version
	VersionStatus map[string]Status
}

type Repo interface {
	Create(ctx context.Context, doc Document, first Version) error
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context) ([]Document, error)
	Apply(ctx context.Context, change Change) error
	ListPublished(ctx context.Context) ([]Published, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	Counts(ctx context.Context) (Counts, error)
}
