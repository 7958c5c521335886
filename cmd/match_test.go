package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyside-cli/internal/bookmarks"
	"github.com/sells-group/buyside-cli/internal/model"
	"github.com/sells-group/buyside-cli/internal/query"
)

func TestParseQuery(t *testing.T) {
	q, err := parseQuery([]string{
		"offering:cloud",
		"or:offering:saas",
		"not:sector:on-prem",
	})
	require.NoError(t, err)
	require.Len(t, q, 3)

	assert.Equal(t, query.Clause{Field: query.FieldOffering, Op: query.OpAnd, Text: "cloud"}, q[0])
	assert.Equal(t, query.Clause{Field: query.FieldOffering, Op: query.OpOr, Text: "saas"}, q[1])
	assert.Equal(t, query.Clause{Field: query.FieldSector, Op: query.OpNot, Text: "on-prem"}, q[2])
}

func TestParseQueryTextMayContainColons(t *testing.T) {
	q, err := parseQuery([]string{"keywords:b2b: enterprise"})
	require.NoError(t, err)
	require.Len(t, q, 1)
	assert.Equal(t, "b2b: enterprise", q[0].Text)
}

func TestParseQueryEmpty(t *testing.T) {
	q, err := parseQuery(nil)
	require.NoError(t, err)
	assert.Empty(t, q)
}

func TestParseQueryRejectsMalformedClauses(t *testing.T) {
	cases := []string{
		"cloud",
		"not:offering",
		"bogus:cloud",
		"or:bogus:cloud",
	}
	for _, raw := range cases {
		_, err := parseQuery([]string{raw})
		assert.Error(t, err, raw)
	}
}

func newMatchFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().StringArray("weight", nil, "")
	cmd.Flags().String("disable", "", "")
	return cmd
}

func TestScoringConfigFromFlags(t *testing.T) {
	cmd := newMatchFlagsCmd()
	require.NoError(t, cmd.Flags().Set("weight", "offering=80"))
	require.NoError(t, cmd.Flags().Set("disable", "positioning"))

	cfg, err := scoringConfigFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg["offering"].Weight)
	assert.False(t, cfg["positioning"].Enabled)
	assert.True(t, cfg["customer_base"].Enabled)
}

func TestScoringConfigFromFlagsRejectsBadWeight(t *testing.T) {
	cmd := newMatchFlagsCmd()
	require.NoError(t, cmd.Flags().Set("weight", "offering=150"))

	_, err := scoringConfigFromFlags(cmd)
	assert.Error(t, err)
}

func TestFormatMatchTable(t *testing.T) {
	results := []model.ScoredBuyer{
		{Buyer: model.BuyerRecord{Name: "Acme Holdings", Kind: model.KindStrategic, HQCountry: "United States", Revenue: 50_000_000}, Composite: 91},
		{Buyer: model.BuyerRecord{Name: "Birch Capital", Kind: model.KindSponsor, HQCountry: "Canada", Revenue: 10_000_000}, Composite: 62},
	}

	var buf bytes.Buffer
	formatMatchTable(&buf, results, 1, nil)

	out := buf.String()
	assert.Contains(t, out, "Acme Holdings")
	assert.Contains(t, out, "91")
	assert.NotContains(t, out, "Birch Capital")
	assert.Contains(t, out, "... and 1 more")
}

func TestFormatMatchTableMarksShortlisted(t *testing.T) {
	results := []model.ScoredBuyer{
		{Buyer: model.BuyerRecord{ID: "b1", Name: "Acme Holdings"}, Composite: 91},
	}
	marks := bookmarks.NewSet()
	marks.Add("b1")

	var buf bytes.Buffer
	formatMatchTable(&buf, results, 0, marks)
	assert.Contains(t, buf.String(), "* Acme Holdings")
}

func TestFormatMatchTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	formatMatchTable(&buf, nil, 0, nil)
	assert.Contains(t, buf.String(), "No buyers matched.")
}
