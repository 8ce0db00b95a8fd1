package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ============================================================================
// LOADER — File path → (Table, Profile)
// ============================================================================
// Two tabular formats are supported: CSV and Parquet. The loader fails
// fast with a typed LoadError, never mutates the source, and profiles the
// result for the schema preview.
// ============================================================================

// LoadErrorKind distinguishes the loader's failure modes.
type LoadErrorKind string

const (
	ErrEmptyPath         LoadErrorKind = "empty_path"
	ErrNotFound          LoadErrorKind = "not_found"
	ErrNotFile           LoadErrorKind = "not_a_file"
	ErrUnsupportedFormat LoadErrorKind = "unsupported_format"
	ErrMalformed         LoadErrorKind = "malformed"
	ErrEmptyTable        LoadErrorKind = "empty_table"
	ErrDuplicateColumns  LoadErrorKind = "duplicate_columns"
	ErrProfiling         LoadErrorKind = "profiling_failed"
)

// LoadError reports why a dataset could not be loaded.
type LoadError struct {
	Path string
	Kind LoadErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s: %s", e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadErr(path string, kind LoadErrorKind, err error) error {
	return &LoadError{Path: path, Kind: kind, Err: err}
}

// Load reads a CSV or Parquet file into a typed Table and profiles it.
func Load(ctx context.Context, path string) (*Table, *Profile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, loadErr(path, ErrEmptyPath, nil)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil, loadErr(path, ErrNotFound, nil)
	}
	if err != nil {
		return nil, nil, loadErr(path, ErrNotFound, err)
	}
	if info.IsDir() {
		return nil, nil, loadErr(path, ErrNotFile, nil)
	}

	var table *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		table, err = loadCSV(path)
	case ".parquet", ".pq":
		table, err = loadParquet(ctx, path)
	default:
		return nil, nil, loadErr(path, ErrUnsupportedFormat,
			fmt.Errorf("only CSV and Parquet are supported"))
	}
	if err != nil {
		return nil, nil, err
	}

	if table.NumRows() == 0 {
		return nil, nil, loadErr(path, ErrEmptyTable, nil)
	}

	profile, err := BuildProfile(table)
	if err != nil {
		return nil, nil, loadErr(path, ErrProfiling, err)
	}
	return table, profile, nil
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(path, ErrMalformed, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, loadErr(path, ErrMalformed, err)
	}
	if len(rows) == 0 {
		return nil, loadErr(path, ErrEmptyTable, nil)
	}

	headers := rows[0]
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
		if seen[headers[i]] {
			return nil, loadErr(path, ErrDuplicateColumns,
				fmt.Errorf("column %q appears more than once", headers[i]))
		}
		seen[headers[i]] = true
	}

	body := rows[1:]
	cols := make([]Column, len(headers))
	for ci, name := range headers {
		values := make([]string, len(body))
		for ri, row := range body {
			if ci < len(row) {
				values[ri] = strings.TrimSpace(row[ci])
			}
		}
		cols[ci] = InferColumn(name, values)
	}

	table, err := New(cols)
	if err != nil {
		return nil, loadErr(path, ErrMalformed, err)
	}
	return table, nil
}

func loadParquet(ctx context.Context, path string) (*Table, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, loadErr(path, ErrMalformed, err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, loadErr(path, ErrMalformed, err)
	}

	arrowTable, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, loadErr(path, ErrMalformed, err)
	}
	defer arrowTable.Release()

	numCols := int(arrowTable.NumCols())
	seen := make(map[string]bool, numCols)
	cols := make([]Column, 0, numCols)
	for ci := 0; ci < numCols; ci++ {
		name := arrowTable.Schema().Field(ci).Name
		if seen[name] {
			return nil, loadErr(path, ErrDuplicateColumns,
				fmt.Errorf("column %q appears more than once", name))
		}
		seen[name] = true

		values := make([]string, 0, int(arrowTable.NumRows()))
		for _, chunk := range arrowTable.Column(ci).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				if chunk.IsNull(i) {
					values = append(values, "")
				} else {
					values = append(values, chunk.ValueStr(i))
				}
			}
		}
		cols = append(cols, InferColumn(name, values))
	}

	table, err := New(cols)
	if err != nil {
		return nil, loadErr(path, ErrMalformed, err)
	}
	return table, nil
}
