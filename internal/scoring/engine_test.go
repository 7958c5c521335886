package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyside-cli/internal/criteria"
	"github.com/sells-group/buyside-cli/internal/model"
	"github.com/sells-group/buyside-cli/internal/rationale"
)

func testBuyer(id, name string, baseline int, subs map[string]int) model.BuyerRecord {
	return model.BuyerRecord{
		ID:              id,
		Name:            name,
		Kind:            model.KindStrategic,
		MatchingScore:   baseline,
		RationaleScores: subs,
	}
}

func TestScoreWeightedAverage(t *testing.T) {
	eng := New(rationale.NewStatic())

	cfg := model.ScoringConfig{
		criteria.Offering:     {Enabled: true, Weight: 60},
		criteria.CustomerBase: {Enabled: true, Weight: 40},
	}
	buyer := testBuyer("b1", "Acme", 50, map[string]int{
		criteria.Offering:     90,
		criteria.CustomerBase: 40,
	})

	got := eng.Score(buyer, cfg)
	// (60*90 + 40*40) / 100 = 70
	assert.Equal(t, 70, got.Composite)
	assert.Len(t, got.Rationales, 2)
}

func TestScoreRoundsToNearestInteger(t *testing.T) {
	eng := New(rationale.NewStatic())
	cfg := model.ScoringConfig{
		criteria.Offering: {Enabled: true, Weight: 50},
		criteria.UseCase:  {Enabled: true, Weight: 50},
	}
	buyer := testBuyer("b1", "Acme", 0, map[string]int{
		criteria.Offering: 80,
		criteria.UseCase:  81,
	})
	// 80.5 rounds up.
	assert.Equal(t, 81, eng.Score(buyer, cfg).Composite)
}

func TestScoreInRangeForAllConfigs(t *testing.T) {
	eng := New(rationale.NewStatic())
	buyers := []model.BuyerRecord{
		testBuyer("b1", "A", 0, map[string]int{criteria.Offering: 0}),
		testBuyer("b2", "B", 100, map[string]int{criteria.Offering: 100}),
		testBuyer("b3", "C", 57, nil),
	}
	cfgs := []model.ScoringConfig{
		criteria.DefaultConfig(),
		{criteria.Offering: {Enabled: true, Weight: 1}},
		{criteria.Offering: {Enabled: true, Weight: 100}, criteria.UseCase: {Enabled: false, Weight: 100}},
	}
	for _, cfg := range cfgs {
		for _, b := range buyers {
			got := eng.Score(b, cfg)
			assert.GreaterOrEqual(t, got.Composite, 0)
			assert.LessOrEqual(t, got.Composite, 100)
		}
	}
}

func TestScoreFallsBackToBaseline(t *testing.T) {
	eng := New(rationale.NewStatic())

	t.Run("no criterion enabled", func(t *testing.T) {
		cfg := model.ScoringConfig{
			criteria.Offering: {Enabled: false, Weight: 100},
		}
		buyer := testBuyer("b1", "Acme", 63, map[string]int{criteria.Offering: 99})
		assert.Equal(t, 63, eng.Score(buyer, cfg).Composite)
	})

	t.Run("all enabled weights zero", func(t *testing.T) {
		cfg := model.ScoringConfig{
			criteria.Offering: {Enabled: true, Weight: 0},
		}
		buyer := testBuyer("b1", "Acme", 63, map[string]int{criteria.Offering: 99})
		assert.Equal(t, 63, eng.Score(buyer, cfg).Composite)
	})

	t.Run("missing sub-score uses baseline per criterion", func(t *testing.T) {
		cfg := model.ScoringConfig{
			criteria.Offering: {Enabled: true, Weight: 50},
			criteria.UseCase:  {Enabled: true, Weight: 50},
		}
		buyer := testBuyer("b1", "Acme", 40, map[string]int{criteria.Offering: 80})
		// (50*80 + 50*40) / 100 = 60
		assert.Equal(t, 60, eng.Score(buyer, cfg).Composite)
	})
}

func TestDisabledEquivalentToZeroWeight(t *testing.T) {
	eng := New(rationale.NewStatic())
	buyer := testBuyer("b1", "Acme", 10, map[string]int{
		criteria.Offering: 90,
		criteria.UseCase:  30,
	})

	disabled := model.ScoringConfig{
		criteria.Offering: {Enabled: true, Weight: 70},
		criteria.UseCase:  {Enabled: false, Weight: 30},
	}
	zeroed := model.ScoringConfig{
		criteria.Offering: {Enabled: true, Weight: 70},
		criteria.UseCase:  {Enabled: true, Weight: 0},
	}

	assert.Equal(t, eng.Score(buyer, zeroed).Composite, eng.Score(buyer, disabled).Composite)
}

func TestScoreDoesNotMutateInput(t *testing.T) {
	eng := New(rationale.NewStatic())
	buyer := testBuyer("b1", "Acme", 50, map[string]int{criteria.Offering: 90})
	cfg := criteria.DefaultConfig()

	_ = eng.Score(buyer, cfg)

	assert.Equal(t, 50, buyer.MatchingScore)
	assert.Equal(t, 90, buyer.RationaleScores[criteria.Offering])
	require.NoError(t, criteria.Validate(cfg))
}

func TestRankDeterministicTieBreaks(t *testing.T) {
	scored := []model.ScoredBuyer{
		{Buyer: model.BuyerRecord{ID: "1", Name: "Zeta", MatchingScore: 50}, Composite: 80},
		{Buyer: model.BuyerRecord{ID: "2", Name: "Alpha", MatchingScore: 50}, Composite: 80},
		{Buyer: model.BuyerRecord{ID: "3", Name: "Beta", MatchingScore: 70}, Composite: 80},
		{Buyer: model.BuyerRecord{ID: "4", Name: "Gamma", MatchingScore: 10}, Composite: 95},
	}

	Rank(scored)

	var ids []string
	for _, s := range scored {
		ids = append(ids, s.Buyer.ID)
	}
	// Composite first, then baseline, then name.
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids)
}
