// Package query evaluates boolean keyword queries against buyer text fields.
//
// Clauses fold strictly left to right with each clause's own operator; there
// is no AND-over-OR precedence. The first non-blank clause seeds the result.
package query

import (
	"strings"

	"github.com/sells-group/buyside-cli/internal/model"
)

// Field names the buyer text field a clause searches.
type Field string

const (
	FieldOffering  Field = "offering"
	FieldSector    Field = "sector"
	FieldCustomers Field = "customers"
	FieldKeywords  Field = "keywords"
)

// Op combines a clause result with the accumulated result of prior clauses.
type Op string

const (
	OpAnd Op = "AND"
	OpOr  Op = "OR"
	OpNot Op = "NOT"
)

// Clause is one keyword condition.
type Clause struct {
	Field Field  `json:"field"`
	Op    Op     `json:"operator"`
	Text  string `json:"text"`
}

// Query is an ordered clause sequence. An empty query matches every buyer.
type Query []Clause

// Matches evaluates the query against one buyer.
func (q Query) Matches(buyer model.BuyerRecord) bool {
	acc := true
	seeded := false

	for _, c := range q {
		terms := strings.Fields(strings.ToLower(c.Text))
		if len(terms) == 0 {
			// Blank clause text never constrains the result.
			continue
		}

		res := clauseMatch(fieldText(buyer, c.Field), terms, c.Op)

		if !seeded {
			// The first effective clause is the seed set; its own operator
			// only matters for NOT, which seeds the exclusion.
			if c.Op == OpNot {
				acc = !res
			} else {
				acc = res
			}
			seeded = true
			continue
		}

		switch c.Op {
		case OpOr:
			acc = acc || res
		case OpNot:
			acc = acc && !res
		default: // AND
			acc = acc && res
		}
	}

	return acc
}

// clauseMatch reports whether the terms match the field text. AND requires
// every term as a substring; OR and NOT require any (NOT's negation happens
// in the fold).
func clauseMatch(text string, terms []string, op Op) bool {
	if op == OpAnd {
		for _, term := range terms {
			if !strings.Contains(text, term) {
				return false
			}
		}
		return true
	}
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func fieldText(b model.BuyerRecord, f Field) string {
	switch f {
	case FieldSector:
		return strings.ToLower(b.SectorText)
	case FieldCustomers:
		return strings.ToLower(b.CustomerText)
	case FieldKeywords:
		return strings.ToLower(strings.Join(b.KeywordTags, " "))
	default:
		return strings.ToLower(b.OfferingText)
	}
}
