package rationale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/buyside-cli/internal/criteria"
	"github.com/sells-group/buyside-cli/internal/model"
)

func TestStaticProvider(t *testing.T) {
	buyer := model.BuyerRecord{
		ID: "b1",
		RationaleScores: map[string]int{
			criteria.Offering: 82,
			criteria.UseCase:  140, // stray value from the feed
		},
	}
	p := NewStatic()

	r, ok := p.SubScore(buyer, criteria.Offering)
	require.True(t, ok)
	assert.Equal(t, 82, r.Score)

	r, ok = p.SubScore(buyer, criteria.UseCase)
	require.True(t, ok)
	assert.Equal(t, 100, r.Score, "stray scores are clamped to 0-100")

	_, ok = p.SubScore(buyer, criteria.Positioning)
	assert.False(t, ok, "missing criterion means no opinion")
}

func TestParseRationaleJSON(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		got, err := parseRationaleJSON(`{"offering":{"score":75,"text":"adjacent product line"}}`)
		require.NoError(t, err)
		require.Contains(t, got, criteria.Offering)
		assert.Equal(t, 75, got[criteria.Offering].Score)
		assert.Equal(t, "adjacent product line", got[criteria.Offering].Text)
	})

	t.Run("fenced JSON with unknown keys", func(t *testing.T) {
		text := "```json\n{\"offering\":{\"score\":-5},\"vibes\":{\"score\":99}}\n```"
		got, err := parseRationaleJSON(text)
		require.NoError(t, err)
		assert.Equal(t, 0, got[criteria.Offering].Score, "negative scores clamp to 0")
		assert.NotContains(t, got, "vibes")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseRationaleJSON("no json here")
		require.Error(t, err)
	})
}
