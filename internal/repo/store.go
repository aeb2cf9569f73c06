package repo

import "context"

// CaseStore is the only path to persisted cases. Every method except Create
// is scoped by lab; a case in another lab behaves exactly like a missing one.
type CaseStore interface {
	// Create inserts c and fills ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, c *Case) error

	Get(ctx context.Context, labID string, id int64) (*Case, error)

	// List returns the requested page, newest first, and the total match count.
	List(ctx context.Context, labID string, f Filter, p Page) ([]*Case, int, error)

	// Update loads the case, applies mutate and persists the result in one
	// transaction. UpdatedAt is refreshed by the store. If mutate returns an
	// error nothing is written.
	Update(ctx context.Context, labID string, id int64, mutate func(*Case) error) (*Case, error)

	Delete(ctx context.Context, labID string, id int64) error

	Ping(ctx context.Context) error
}
