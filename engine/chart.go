package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/spektr-org/insight/plan"
)

// ============================================================================
// CHART SPEC — Render-ready chart description
// ============================================================================
// The engine decides WHAT to plot; a Renderer decides how. The spec is
// the whole contract: chart shape, titled axes, the data points, and
// display hints the renderer may honor.
// ============================================================================

// MaxBarCategories caps the categories a bar chart displays. Tables with
// more distinct x values are truncated to their head.
const MaxBarCategories = 20

// Point is a single labeled data point.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// DisplayHints are renderer suggestions, not requirements.
type DisplayHints struct {
	MaxCategories int  `json:"max_categories"`
	RotateXLabels bool `json:"rotate_x_labels"`
}

// ChartSpec describes one chart.
type ChartSpec struct {
	Type   plan.ChartType `json:"chart_type"`
	Title  string         `json:"title"`
	XLabel string         `json:"x_label,omitempty"`
	YLabel string         `json:"y_label,omitempty"`

	// Points carries bar/line/scatter data; Values carries the raw
	// observations for a histogram.
	Points []Point   `json:"points,omitempty"`
	Values []float64 `json:"values,omitempty"`

	Hints DisplayHints `json:"hints"`
}

func defaultHints() DisplayHints {
	return DisplayHints{MaxCategories: MaxBarCategories, RotateXLabels: true}
}

// ============================================================================
// RENDERER — Chart spec → saved artifact
// ============================================================================

// Renderer turns a ChartSpec into an artifact and returns its path or
// handle. The engine never draws pixels itself.
type Renderer interface {
	Render(spec *ChartSpec) (string, error)
}

// SpecRenderer writes the chart spec as a JSON file, ready for whatever
// frontend draws it.
type SpecRenderer struct {
	Dir string
}

// NewSpecRenderer builds a renderer that saves specs under dir.
func NewSpecRenderer(dir string) *SpecRenderer {
	return &SpecRenderer{Dir: dir}
}

// Render saves the spec and returns the saved path.
func (r *SpecRenderer) Render(spec *ChartSpec) (string, error) {
	if spec == nil {
		return "", fmt.Errorf("no chart spec to render")
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create chart dir: %w", err)
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode chart spec: %w", err)
	}

	name := fmt.Sprintf("chart_%s_%s.json", spec.Type, uuid.NewString()[:8])
	path := filepath.Join(r.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write chart spec: %w", err)
	}
	return path, nil
}
