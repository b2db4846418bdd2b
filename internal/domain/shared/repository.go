package shared

import "context"

const (
	// DefaultPageLimit is used when a caller asks for no explicit limit
	DefaultPageLimit = 50
	// MaxPageLimit caps any single page
	MaxPageLimit = 200
)

// Pagination is an offset/limit window over an ordered result set
type Pagination struct {
	Offset int
	Limit  int
}

// Normalize clamps the window into the supported range
func (p Pagination) Normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// TxManager runs a unit of work atomically.
//
// The transaction handle travels inside the context passed to fn; repositories
// constructed over the same database pick it up from there. Nested calls join
// the outer transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
