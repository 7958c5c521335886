// Package filter applies structured filters and the keyword query to scored
// buyers and produces the final ordered list.
package filter

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/buyside-cli/internal/model"
	"github.com/sells-group/buyside-cli/internal/query"
	"github.com/sells-group/buyside-cli/internal/scoring"
)

// SortKey selects the final ordering.
type SortKey string

const (
	SortBestMatch SortKey = "bestMatch"
	SortNameAsc   SortKey = "nameAsc"
	SortNameDesc  SortKey = "nameDesc"
)

// Range is an inclusive lower bound with an optional upper bound; Max 0
// means unbounded above. The zero Range admits every value.
type Range struct {
	Min int64 `json:"min,omitempty"`
	Max int64 `json:"max,omitempty"`
}

func (r Range) contains(v int64) bool {
	if v < r.Min {
		return false
	}
	return r.Max == 0 || v <= r.Max
}

func (r Range) isSet() bool { return r.Min != 0 || r.Max != 0 }

// State holds the structured filters for one (project, tab) pair. The zero
// value is the all-unset state; Reset returns to it.
type State struct {
	HQCountries   []string `json:"hq_countries,omitempty"`
	EmployeeRange Range    `json:"employee_range,omitempty"`
	RevenueRange  Range    `json:"revenue_range,omitempty"`
	CashRange     Range    `json:"cash_range,omitempty"`
	MinMatchScore int      `json:"min_match_score,omitempty"`
	SponsorBacked *bool    `json:"sponsor_backed,omitempty"`
	IsPublic      *bool    `json:"is_public,omitempty"`
	Sort          SortKey  `json:"sort,omitempty"`
}

// Reset returns the all-unset state.
func Reset() State { return State{} }

// Validate rejects malformed ranges at the mutation boundary so Apply can
// stay total.
func (s State) Validate() error {
	var errs []string
	for name, r := range map[string]Range{
		"employee_range": s.EmployeeRange,
		"revenue_range":  s.RevenueRange,
		"cash_range":     s.CashRange,
	} {
		if r.Max > 0 && r.Max < r.Min {
			errs = append(errs, name+" upper bound below lower bound")
		}
	}
	if s.MinMatchScore < 0 || s.MinMatchScore > 100 {
		errs = append(errs, "min_match_score must be 0-100")
	}
	switch s.Sort {
	case "", SortBestMatch, SortNameAsc, SortNameDesc:
	default:
		errs = append(errs, "unknown sort key "+string(s.Sort))
	}
	if len(errs) > 0 {
		return eris.Errorf("filter: invalid state: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Apply runs the fixed filter stages over a scored buyer list and returns a
// new ordered slice. The result is never nil: an empty result set is a
// concrete, valid outcome. Inputs are never mutated.
//
// Stage order: HQ country membership, numeric ranges, minimum match score,
// boolean flags, keyword query, sort.
func Apply(buyers []model.ScoredBuyer, s State, q query.Query) []model.ScoredBuyer {
	out := make([]model.ScoredBuyer, 0, len(buyers))
	for _, sb := range buyers {
		if !matchesFilters(sb, s) {
			continue
		}
		if !q.Matches(sb.Buyer) {
			continue
		}
		out = append(out, sb)
	}

	sortResults(out, s.Sort)
	return out
}

func matchesFilters(sb model.ScoredBuyer, s State) bool {
	b := sb.Buyer

	if len(s.HQCountries) > 0 && !containsFold(s.HQCountries, b.HQCountry) {
		return false
	}

	// Absent numeric fields are zero on the record and are treated as such,
	// so a lower bound excludes them rather than matching everything.
	if s.EmployeeRange.isSet() && !s.EmployeeRange.contains(b.Employees) {
		return false
	}
	if s.RevenueRange.isSet() && !s.RevenueRange.contains(b.Revenue) {
		return false
	}
	if s.CashRange.isSet() && !s.CashRange.contains(b.CashReserve) {
		return false
	}

	if s.MinMatchScore > 0 && sb.Composite < s.MinMatchScore {
		return false
	}

	if s.SponsorBacked != nil && b.SponsorBacked != *s.SponsorBacked {
		return false
	}
	if s.IsPublic != nil && b.Public != *s.IsPublic {
		return false
	}

	return true
}

func sortResults(out []model.ScoredBuyer, key SortKey) {
	switch key {
	case SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return nameLess(out[i], out[j])
		})
	case SortNameDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return nameLess(out[j], out[i])
		})
	default: // bestMatch
		scoring.Rank(out)
	}
}

func nameLess(a, b model.ScoredBuyer) bool {
	an, bn := strings.ToLower(a.Buyer.Name), strings.ToLower(b.Buyer.Name)
	if an != bn {
		return an < bn
	}
	return a.Buyer.ID < b.Buyer.ID
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}
