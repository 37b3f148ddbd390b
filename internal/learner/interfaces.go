package learner

import (
	"context"
	"time"
)

// CatalogSource produces the deduplicated, schedulable catalog for one run.
type CatalogSource interface {
	FetchCatalog(ctx context.Context) ([]CatalogItem, error)
}

// ParameterSource resolves the per-item submission tokens.
type ParameterSource interface {
	Resolve(ctx context.Context, itemID int) (ItemParameters, error)
}

// Submitter issues one capped progress-delta request, retrying transient
// failures internally up to its budget.
type Submitter interface {
	Submit(ctx context.Context, params ItemParameters, seconds int) error
}

// Clock abstracts time for testing. Sleep must return early with the
// context's error when the context finishes first.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}
