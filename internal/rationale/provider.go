// Package rationale supplies per-criterion sub-scores for buyers. The
// scoring engine depends only on the Provider interface so a real inference
// backend can replace the pre-computed feed without touching the weighting
// math.
package rationale

import (
	"github.com/sells-group/buyside-cli/internal/model"
)

// Provider looks up the sub-score and rationale text for one buyer and
// criterion. The second return is false when the provider has no opinion,
// in which case the engine falls back to the buyer's baseline score.
type Provider interface {
	SubScore(buyer model.BuyerRecord, criterionID string) (model.CriterionRationale, bool)
}

// StaticProvider serves the pre-computed rationale scores shipped on the
// buyer records themselves.
type StaticProvider struct{}

// NewStatic returns a provider backed by BuyerRecord.RationaleScores.
func NewStatic() StaticProvider { return StaticProvider{} }

func (StaticProvider) SubScore(buyer model.BuyerRecord, criterionID string) (model.CriterionRationale, bool) {
	score, ok := buyer.RationaleScores[criterionID]
	if !ok {
		return model.CriterionRationale{}, false
	}
	return model.CriterionRationale{Score: clamp(score)}, true
}

// clamp bounds a sub-score to 0-100; feeds occasionally deliver strays.
func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
