package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyside-cli/internal/criteria"
	"github.com/sells-group/buyside-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "buyside.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleSearch(projectID, name string, createdAt time.Time) *model.SavedSearch {
	return &model.SavedSearch{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: createdAt,
		Config:    criteria.DefaultConfig(),
	}
}

func sampleResults() []model.ScoredBuyer {
	return []model.ScoredBuyer{
		{
			Buyer: model.BuyerRecord{
				ID: "b1", Name: "Cascade Health", Kind: model.KindStrategic,
				HQCountry: "US", Revenue: 240_000_000, MatchingScore: 60,
			},
			Composite: 88,
			Rationales: map[string]model.CriterionRationale{
				criteria.Offering: {Score: 91, Text: "adjacent clinical suite"},
			},
		},
		{
			Buyer: model.BuyerRecord{
				ID: "b2", Name: "Alte Bank Partners", Kind: model.KindSponsor,
				SponsorBacked: true, MatchingScore: 70,
			},
			Composite: 54,
		},
	}
}

func TestSQLiteSearchRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	search := sampleSearch("p1", "healthcare strategics", time.Now().UTC())
	require.NoError(t, s.CreateSearch(ctx, search))
	require.NoError(t, s.PutResults(ctx, search.ID, sampleResults()))

	got, err := s.GetResults(ctx, search.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Same ids, same order, same scores.
	assert.Equal(t, "b1", got[0].Buyer.ID)
	assert.Equal(t, 88, got[0].Composite)
	assert.Equal(t, "adjacent clinical suite", got[0].Rationales[criteria.Offering].Text)
	assert.Equal(t, "b2", got[1].Buyer.ID)
	assert.Equal(t, 54, got[1].Composite)
}

func TestSQLiteEmptySnapshotIsNotMissing(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	search := sampleSearch("p1", "no matches", time.Now().UTC())
	require.NoError(t, s.CreateSearch(ctx, search))
	require.NoError(t, s.PutResults(ctx, search.ID, nil))

	got, err := s.GetResults(ctx, search.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLiteListSearchesMostRecentFirst(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	older := sampleSearch("p1", "first pass", base)
	newer := sampleSearch("p1", "second pass", base.Add(time.Hour))
	other := sampleSearch("p2", "other project", base.Add(2*time.Hour))

	for _, search := range []*model.SavedSearch{older, newer, other} {
		require.NoError(t, s.CreateSearch(ctx, search))
	}

	got, err := s.ListSearches(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second pass", got[0].Name)
	assert.Equal(t, "first pass", got[1].Name)
}

func TestSQLiteGetResultsUnknownID(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetResults(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteDeleteSearch(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	search := sampleSearch("p1", "doomed", time.Now().UTC())
	require.NoError(t, s.CreateSearch(ctx, search))
	require.NoError(t, s.PutResults(ctx, search.ID, sampleResults()))

	require.NoError(t, s.DeleteSearch(ctx, search.ID))

	err := s.DeleteSearch(ctx, search.ID)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound), "second delete reports not found at the store boundary")

	_, err = s.GetResults(ctx, search.ID)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteSavedBuyers(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBuyer(ctx, "p1", "b1"))
	require.NoError(t, s.SaveBuyer(ctx, "p1", "b2"))
	require.NoError(t, s.SaveBuyer(ctx, "p1", "b1"), "duplicate save is a no-op")
	require.NoError(t, s.SaveBuyer(ctx, "p2", "b9"))

	ids, err := s.ListSavedBuyers(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, ids)

	require.NoError(t, s.RemoveBuyer(ctx, "p1", "b1"))
	ids, err = s.ListSavedBuyers(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, ids)
}
