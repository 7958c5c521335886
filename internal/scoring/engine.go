// Package scoring computes composite buyer match scores from a per-project
// scoring config and an injected rationale provider.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/sells-group/buyside-cli/internal/model"
	"github.com/sells-group/buyside-cli/internal/rationale"
)

// Engine turns buyers into ScoredBuyers. It is pure: it never mutates its
// inputs and performs no I/O, so it is safe to construct fresh per call.
type Engine struct {
	provider rationale.Provider
}

// New creates an Engine over the given rationale provider.
func New(provider rationale.Provider) *Engine {
	return &Engine{provider: provider}
}

// Score computes one buyer's composite score: the weighted average of
// per-criterion sub-scores over enabled criteria only. Criteria the
// provider has no opinion on fall back to the buyer's baseline score.
// With no enabled criteria (or an all-zero weight sum) no ranking is
// possible and the composite is the baseline itself.
func (e *Engine) Score(buyer model.BuyerRecord, cfg model.ScoringConfig) model.ScoredBuyer {
	rationales := make(map[string]model.CriterionRationale)

	var weightSum, weighted float64
	for id, sc := range cfg {
		if !sc.Enabled {
			continue
		}
		r, ok := e.provider.SubScore(buyer, id)
		if !ok {
			r = model.CriterionRationale{Score: clampScore(buyer.MatchingScore)}
		}
		rationales[id] = r
		weightSum += float64(sc.Weight)
		weighted += float64(sc.Weight) * float64(r.Score)
	}

	composite := clampScore(buyer.MatchingScore)
	if weightSum > 0 {
		composite = int(math.Round(weighted / weightSum))
	}

	return model.ScoredBuyer{
		Buyer:      buyer,
		Composite:  composite,
		Rationales: rationales,
	}
}

// ScoreAll scores every buyer and returns the results ranked.
func (e *Engine) ScoreAll(buyers []model.BuyerRecord, cfg model.ScoringConfig) []model.ScoredBuyer {
	scored := make([]model.ScoredBuyer, 0, len(buyers))
	for _, b := range buyers {
		scored = append(scored, e.Score(b, cfg))
	}
	Rank(scored)
	return scored
}

// Rank sorts scored buyers best-match first: composite descending, ties by
// baseline score descending, then name ascending. The order is total and
// deterministic so snapshots reproduce exactly.
func Rank(scored []model.ScoredBuyer) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		if a.Buyer.MatchingScore != b.Buyer.MatchingScore {
			return a.Buyer.MatchingScore > b.Buyer.MatchingScore
		}
		return strings.ToLower(a.Buyer.Name) < strings.ToLower(b.Buyer.Name)
	})
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
