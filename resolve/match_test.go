package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MATCHER TESTS
// ============================================================================

func TestScoreSubstringDominatesTokenOverlap(t *testing.T) {
	question := "total revenue by region"

	// "revenue" appears verbatim (+100 +10); "total_units" only shares the
	// token "total" (+10).
	assert.Greater(t, Score(question, "revenue"), Score(question, "total_units"))
}

func TestScoreUnderscoresMatchSpaces(t *testing.T) {
	s := Score("what is the order total for march", "order_total")
	assert.GreaterOrEqual(t, s, 100, "underscored name should match its spaced form verbatim")
}

func TestScoreByAndOfBonuses(t *testing.T) {
	base := Score("show revenue region", "region")
	byScore := Score("show revenue by region", "region")
	ofScore := Score("show revenue of region", "region")

	assert.Equal(t, base+40, byScore)
	assert.Equal(t, base+20, ofScore)
}

func TestBestMatchMinScore(t *testing.T) {
	_, ok := BestMatch("hello world", []string{"revenue", "region"}, DefaultMinScore)
	assert.False(t, ok, "nothing shared should not clear the gate")

	col, ok := BestMatch("revenue", []string{"units", "revenue"}, DefaultMinScore)
	require.True(t, ok)
	assert.Equal(t, "revenue", col)
}

func TestBestMatchStableTies(t *testing.T) {
	// Both candidates share exactly one token with the question; the
	// first declared wins.
	col, ok := BestMatch("total something", []string{"total_a", "total_b"}, LooseMinScore)
	require.True(t, ok)
	assert.Equal(t, "total_a", col)
}

// Column-name verbatim mention resolves that exact column regardless of
// what else the question shares with other candidates.
func TestSubstringMatchProperty(t *testing.T) {
	// Candidate sets are type-restricted in practice, so these are the
	// numeric columns only.
	candidates := []string{"units_sold", "net_revenue", "revenue"}
	questions := map[string]string{
		"sum of revenue please": "revenue",
		"net revenue by region": "net_revenue",
		"how many units sold":   "units_sold",
	}
	for q, want := range questions {
		col, ok := BestMatch(q, candidates, DefaultMinScore)
		require.True(t, ok, "question %q", q)
		assert.Equal(t, want, col, "question %q", q)
	}
}
