package audit

import "context"

type Repo interface {
	Create(ctx context.Context, event Event) error
	List(ctx context.Context, limit int) ([]Event, error)
	Count(ctx context.Context) (int, error)
}
