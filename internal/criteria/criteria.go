// Package criteria holds the fixed catalogue of scorable dimensions and the
// validation boundary for per-project scoring configs.
package criteria

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/buyside-cli/internal/model"
)

// Criterion ids. The set is fixed; configs may toggle and reweight but
// never add or remove dimensions.
const (
	Offering           = "offering"
	ProblemSolved      = "problem_solved"
	UseCase            = "use_case"
	CustomerBase       = "customer_base"
	Positioning        = "positioning"
	AcquisitionHistory = "acquisition_history"
)

const (
	DefaultWeight = 100
	MaxWeight     = 100
)

// Definition is the read-only registry entry for one criterion.
type Definition struct {
	ID    string
	Label string
}

// registry order drives UI enumeration and deterministic iteration.
var registry = []Definition{
	{ID: Offering, Label: "Offering"},
	{ID: ProblemSolved, Label: "Problem Solved"},
	{ID: UseCase, Label: "Use Case"},
	{ID: CustomerBase, Label: "Customer Base"},
	{ID: Positioning, Label: "Positioning"},
	{ID: AcquisitionHistory, Label: "Acquisition History"},
}

// All returns the registry entries in display order.
func All() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}

// IDs returns the criterion ids in display order.
func IDs() []string {
	ids := make([]string, len(registry))
	for i, d := range registry {
		ids[i] = d.ID
	}
	return ids
}

// Label returns the display label for a criterion id, or the id itself when
// unknown.
func Label(id string) string {
	for _, d := range registry {
		if d.ID == id {
			return d.Label
		}
	}
	return id
}

// Known reports whether id names a registered criterion.
func Known(id string) bool {
	for _, d := range registry {
		if d.ID == id {
			return true
		}
	}
	return false
}

// DefaultConfig returns a fresh config with every criterion enabled at
// default weight.
func DefaultConfig() model.ScoringConfig {
	cfg := make(model.ScoringConfig, len(registry))
	for _, d := range registry {
		cfg[d.ID] = model.ScoringCriterion{Enabled: true, Weight: DefaultWeight}
	}
	return cfg
}

// SetWeight updates one criterion's weight. The config is mutated in place;
// validation happens here so the scoring hot path never has to.
func SetWeight(cfg model.ScoringConfig, id string, weight int) error {
	if !Known(id) {
		return eris.Errorf("criteria: unknown criterion %q", id)
	}
	if weight < 0 || weight > MaxWeight {
		return eris.Errorf("criteria: weight for %s must be 0-%d, got %d", id, MaxWeight, weight)
	}
	sc := cfg[id]
	sc.Weight = weight
	cfg[id] = sc
	return nil
}

// SetEnabled toggles one criterion. The stored weight is preserved so
// re-enabling restores the previous value.
func SetEnabled(cfg model.ScoringConfig, id string, enabled bool) error {
	if !Known(id) {
		return eris.Errorf("criteria: unknown criterion %q", id)
	}
	sc := cfg[id]
	sc.Enabled = enabled
	cfg[id] = sc
	return nil
}

// Reset restores every criterion to its registry default. Configs are never
// deleted, only reset.
func Reset(cfg model.ScoringConfig) {
	for _, d := range registry {
		cfg[d.ID] = model.ScoringCriterion{Enabled: true, Weight: DefaultWeight}
	}
}

// Validate checks a config is internally consistent: every id known, every
// weight in range. Used before scoring configs loaded from external callers.
func Validate(cfg model.ScoringConfig) error {
	var errs []string
	for id, sc := range cfg {
		if !Known(id) {
			errs = append(errs, fmt.Sprintf("unknown criterion %q", id))
			continue
		}
		if sc.Weight < 0 || sc.Weight > MaxWeight {
			errs = append(errs, fmt.Sprintf("%s weight must be 0-%d, got %d", id, MaxWeight, sc.Weight))
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("criteria: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
