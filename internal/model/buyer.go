// Package model defines the buyer-discovery domain types shared across the
// scoring, filtering, and persistence layers.
package model

import "time"

// BuyerKind distinguishes strategic acquirers from PE sponsors.
type BuyerKind string

const (
	KindStrategic BuyerKind = "strategic"
	KindSponsor   BuyerKind = "financial-sponsor"
)

// TrackRecordLevel grades a buyer's historical M&A activity.
type TrackRecordLevel string

const (
	TrackRecordHigh   TrackRecordLevel = "high"
	TrackRecordMedium TrackRecordLevel = "medium"
	TrackRecordLow    TrackRecordLevel = "low"
)

// BuyerRecord is one candidate acquirer. Records are loaded once per
// project session and never mutated by the engine; scoring and filtering
// produce derived views.
type BuyerRecord struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Kind        BuyerKind `json:"kind" yaml:"kind"`
	HQCountry   string    `json:"hq_country" yaml:"hq_country"`
	Employees   int64     `json:"employees" yaml:"employees"`
	Revenue     int64     `json:"revenue" yaml:"revenue"`
	CashReserve int64     `json:"cash_reserve" yaml:"cash_reserve"`

	Public        bool             `json:"public" yaml:"public"`
	SponsorBacked bool             `json:"sponsor_backed" yaml:"sponsor_backed"`
	TrackRecord   TrackRecordLevel `json:"track_record" yaml:"track_record"`

	// Text fields searched by the keyword evaluator.
	OfferingText string   `json:"offering_text" yaml:"offering_text"`
	SectorText   string   `json:"sector_text" yaml:"sector_text"`
	CustomerText string   `json:"customer_text" yaml:"customer_text"`
	KeywordTags  []string `json:"keyword_tags,omitempty" yaml:"keyword_tags,omitempty"`

	// MatchingScore is the pre-supplied baseline fit score (0-100) used when
	// no per-criterion rationale is available.
	MatchingScore int `json:"matching_score" yaml:"matching_score"`

	// RationaleScores holds pre-computed per-criterion sub-scores keyed by
	// criterion id, when the buyer feed supplies them.
	RationaleScores map[string]int `json:"rationale_scores,omitempty" yaml:"rationale_scores,omitempty"`

	// Kind-specific detail, consumed by rendering collaborators only.
	Strategic *StrategicDetail `json:"strategic,omitempty" yaml:"strategic,omitempty"`
	Sponsor   *SponsorDetail   `json:"sponsor,omitempty" yaml:"sponsor,omitempty"`
}

// StrategicDetail carries fields specific to operating companies.
type StrategicDetail struct {
	Ticker        string `json:"ticker,omitempty" yaml:"ticker,omitempty"`
	ParentCompany string `json:"parent_company,omitempty" yaml:"parent_company,omitempty"`
	FoundedYear   int    `json:"founded_year,omitempty" yaml:"founded_year,omitempty"`
}

// SponsorDetail carries fields specific to PE funds.
type SponsorDetail struct {
	FundSize       int64  `json:"fund_size,omitempty" yaml:"fund_size,omitempty"`
	DryPowder      int64  `json:"dry_powder,omitempty" yaml:"dry_powder,omitempty"`
	PortfolioCount int    `json:"portfolio_count,omitempty" yaml:"portfolio_count,omitempty"`
	FundVintage    string `json:"fund_vintage,omitempty" yaml:"fund_vintage,omitempty"`
}

// CriterionRationale is the per-criterion slice of a composite score.
type CriterionRationale struct {
	Score int    `json:"score"`
	Text  string `json:"text,omitempty"`
}

// ScoredBuyer pairs a buyer with its computed composite score and the
// per-criterion rationale behind it.
type ScoredBuyer struct {
	Buyer      BuyerRecord                   `json:"buyer"`
	Composite  int                           `json:"composite"`
	Rationales map[string]CriterionRationale `json:"rationales,omitempty"`
}

// ScoringCriterion is the user-editable state of one scorable dimension.
// A disabled criterion contributes nothing regardless of its stored weight.
type ScoringCriterion struct {
	Enabled bool `json:"enabled"`
	Weight  int  `json:"weight"` // 0-100
}

// ScoringConfig maps criterion id to its state, scoped to one project.
type ScoringConfig map[string]ScoringCriterion

// Clone returns an independent copy of the config.
func (c ScoringConfig) Clone() ScoringConfig {
	out := make(ScoringConfig, len(c))
	for id, sc := range c {
		out[id] = sc
	}
	return out
}

// SavedSearch is an immutable snapshot of a scored, filtered result set.
// A new save always produces a new SavedSearch; existing ones are never
// patched.
type SavedSearch struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	Config    ScoringConfig `json:"config"`
	Results   []ScoredBuyer `json:"results,omitempty"`
}

// SavedSearchSummary is the listing view of a SavedSearch.
type SavedSearchSummary struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
