// Package store persists saved searches and saved-buyer marks. Two backends
// implement Store: SQLite for single-seat installs and Postgres for shared
// deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/buyside-cli/internal/model"
)

// ErrNotFound is returned for lookups and deletes on unknown search ids.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for the buyer-discovery engine.
type Store interface {
	// Saved searches. CreateSearch writes the parent record only;
	// PutResults writes the result snapshot in a second phase so a failed
	// snapshot can be rolled back by deleting the parent.
	CreateSearch(ctx context.Context, search *model.SavedSearch) error
	PutResults(ctx context.Context, searchID string, results []model.ScoredBuyer) error
	ListSearches(ctx context.Context, projectID string) ([]model.SavedSearchSummary, error)
	GetResults(ctx context.Context, searchID string) ([]model.ScoredBuyer, error)
	DeleteSearch(ctx context.Context, searchID string) error

	// Saved-buyer marks, keyed by project. SaveBuyer is idempotent.
	SaveBuyer(ctx context.Context, projectID, buyerID string) error
	RemoveBuyer(ctx context.Context, projectID, buyerID string) error
	ListSavedBuyers(ctx context.Context, projectID string) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
