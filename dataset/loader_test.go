package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// LOADER TESTS
// ============================================================================

var salesCSV = []byte(`region,product,revenue,units,order_date
West,Widget,"$1,200",3,2026-01-15
East,Widget,800,2,2026-01-16
West,Gadget,950.50,1,2026-01-17
South,Widget,n/a,4,2026-01-18
East,Gadget,"1,100",2,2026-01-19
`)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	table, profile, err := Load(context.Background(), writeTemp(t, "sales.csv", salesCSV))
	require.NoError(t, err)

	assert.Equal(t, 5, table.NumRows())
	assert.Equal(t, []string{"region", "product", "revenue", "units", "order_date"}, table.Names())

	rev, ok := table.Column("revenue")
	require.True(t, ok)
	assert.Equal(t, Numeric, rev.Type)
	assert.Equal(t, 1200.0, rev.Floats[0])

	date, ok := table.Column("order_date")
	require.True(t, ok)
	assert.Equal(t, Datetime, date.Type)

	assert.Equal(t, 5, profile.RowCount)
	assert.Equal(t, "numeric", profile.Dtypes["revenue"])
	assert.Equal(t, "categorical", profile.Dtypes["region"])
	assert.InDelta(t, 20.0, profile.MissingPct["revenue"], 0.01)
}

func TestLoadErrorKinds(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		path string
		kind LoadErrorKind
	}{
		{"empty path", "  ", ErrEmptyPath},
		{"missing file", "no_such_file.csv", ErrNotFound},
		{"unsupported format", writeTemp(t, "data.xlsx", []byte("x")), ErrUnsupportedFormat},
		{"header only", writeTemp(t, "empty.csv", []byte("a,b,c\n")), ErrEmptyTable},
		{"duplicate headers", writeTemp(t, "dup.csv", []byte("a,b,a\n1,2,3\n")), ErrDuplicateColumns},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := Load(ctx, c.path)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, c.kind, le.Kind)
		})
	}
}

func TestLoadDirectoryFails(t *testing.T) {
	_, _, err := Load(context.Background(), t.TempDir())
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrNotFile, le.Kind)
}
