package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TYPE INFERENCE TESTS
// ============================================================================

func TestInferNumericColumn(t *testing.T) {
	col := InferColumn("revenue", []string{"$1,200", "800", "950.50", "n/a", "1100"})

	assert.Equal(t, Numeric, col.Type)
	require.Len(t, col.Floats, 5)
	assert.Equal(t, 1200.0, col.Floats[0])
	assert.True(t, math.IsNaN(col.Floats[3]), "unparsable cell becomes missing")
}

// A column below the 70% numeric threshold stays categorical even though
// some cells parse.
func TestInferMostlyTextStaysCategorical(t *testing.T) {
	col := InferColumn("notes", []string{"followup", "42", "pending", "escalated", "closed"})

	assert.Equal(t, Categorical, col.Type)
	assert.Nil(t, col.Floats)
}

func TestInferBooleanColumn(t *testing.T) {
	col := InferColumn("active", []string{"true", "FALSE", "yes", "no", ""})
	assert.Equal(t, Boolean, col.Type)
}

func TestInferDatetimeColumn(t *testing.T) {
	col := InferColumn("created", []string{"2026-01-15", "2026-01-16", "2026-02-01"})
	assert.Equal(t, Datetime, col.Type)
}

// A date-suggestive name tips inference even when only some cells parse.
func TestInferDatetimeByName(t *testing.T) {
	col := InferColumn("order_date", []string{"2026-01-15", "unknown", "2026-02-01"})
	assert.Equal(t, Datetime, col.Type)

	plain := InferColumn("label", []string{"2026-01-15", "unknown", "west"})
	assert.Equal(t, Categorical, plain.Type)
}

func TestInferAllMissing(t *testing.T) {
	col := InferColumn("blank", []string{"", "nan", "null"})
	assert.Equal(t, Categorical, col.Type)
}

func TestParseDateLayouts(t *testing.T) {
	for _, s := range []string{"2026-01-15", "01/15/2026", "Jan-2026", "2026-01"} {
		_, ok := ParseDate(s)
		assert.True(t, ok, "ParseDate(%q)", s)
	}
	_, ok := ParseDate("mid january")
	assert.False(t, ok)
}
