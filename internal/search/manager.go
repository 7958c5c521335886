// Package search manages saved-search snapshots: named, immutable copies of
// a scored and filtered buyer list together with the scoring config that
// produced it.
package search

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/buyside-cli/internal/model"
	"github.com/sells-group/buyside-cli/internal/store"
)

// Manager persists and retrieves saved searches. Saved searches are
// immutable after creation; "updating" one means saving a new one.
type Manager struct {
	store store.Store
}

// NewManager creates a Manager over the given store.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// Save snapshots the given config and ranked results under a user-chosen
// name. The write is two-phase (parent record, then snapshot rows); if the
// snapshot write fails the parent is rolled back so no partial record
// survives. Rollback failure is logged as a degraded save and the original
// error is still returned.
func (m *Manager) Save(ctx context.Context, projectID, name string, cfg model.ScoringConfig, results []model.ScoredBuyer) (*model.SavedSearch, error) {
	if name == "" {
		return nil, eris.New("search: name is required")
	}
	if projectID == "" {
		return nil, eris.New("search: project id is required")
	}

	snapshot := make([]model.ScoredBuyer, len(results))
	copy(snapshot, results)

	saved := &model.SavedSearch{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Config:    cfg.Clone(),
		Results:   snapshot,
	}

	if err := m.store.CreateSearch(ctx, saved); err != nil {
		return nil, eris.Wrapf(err, "search: save %q", name)
	}

	if err := m.store.PutResults(ctx, saved.ID, snapshot); err != nil {
		if rbErr := m.store.DeleteSearch(ctx, saved.ID); rbErr != nil && !eris.Is(rbErr, store.ErrNotFound) {
			zap.L().Warn("search: degraded save, parent record could not be rolled back",
				zap.String("search_id", saved.ID),
				zap.String("name", name),
				zap.Error(rbErr),
			)
		}
		return nil, eris.Wrapf(err, "search: save results for %q", name)
	}

	zap.L().Info("search: saved",
		zap.String("search_id", saved.ID),
		zap.String("project_id", projectID),
		zap.String("name", name),
		zap.Int("results", len(snapshot)),
	)
	return saved, nil
}

// List returns saved-search summaries for a project, most recent first.
func (m *Manager) List(ctx context.Context, projectID string) ([]model.SavedSearchSummary, error) {
	out, err := m.store.ListSearches(ctx, projectID)
	if err != nil {
		return nil, eris.Wrapf(err, "search: list for project %s", projectID)
	}
	if out == nil {
		out = []model.SavedSearchSummary{}
	}
	return out, nil
}

// LoadResults returns the exact snapshot saved under searchID, independent
// of any later change to the live buyer source.
func (m *Manager) LoadResults(ctx context.Context, searchID string) ([]model.ScoredBuyer, error) {
	results, err := m.store.GetResults(ctx, searchID)
	if err != nil {
		return nil, eris.Wrapf(err, "search: load %s", searchID)
	}
	return results, nil
}

// Delete removes a saved search. Deleting one that is already gone is not
// an error at this boundary.
func (m *Manager) Delete(ctx context.Context, searchID string) error {
	err := m.store.DeleteSearch(ctx, searchID)
	if eris.Is(err, store.ErrNotFound) {
		zap.L().Debug("search: delete of already-deleted search", zap.String("search_id", searchID))
		return nil
	}
	return eris.Wrapf(err, "search: delete %s", searchID)
}
