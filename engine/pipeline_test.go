package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/plan"
	"github.com/spektr-org/insight/planner"
	"github.com/spektr-org/insight/resolve"
)

// ============================================================================
// PIPELINE TESTS — Question in, response out
// ============================================================================

type recordingExplainer struct{ calls int }

func (r *recordingExplainer) Explain(*State) string { r.calls++; return "explained" }

func (r *recordingExplainer) Suggest(*State) []string { return []string{"next question"} }

func textOnlyTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.New([]dataset.Column{
		dataset.TextColumn("region", []string{"West", "East"}),
	})
	require.NoError(t, err)
	return table
}

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	classifier := planner.New(resolve.NewResolver(resolve.DefaultVocabulary()), logger)
	return NewPipeline(classifier, NewExecutor(logger), logger, opts...)
}

func TestPipelineAggregationTurn(t *testing.T) {
	resp := newTestPipeline(t).Run("total revenue by region", salesTable(t), nil)

	require.Empty(t, resp.Error)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, plan.Aggregation, resp.Plan.TaskType)
	assert.Equal(t, 0.86, resp.Confidence)
	require.NotNil(t, resp.Outcome)
	assert.Equal(t, 3, resp.Outcome.Table.NumRows())
	assert.Equal(t, 0, resp.Retries)
}

func TestPipelineChartTurnRendersSpec(t *testing.T) {
	dir := t.TempDir()
	resp := newTestPipeline(t,
		WithRenderer(NewSpecRenderer(dir)),
		WithExplainer(&recordingExplainer{}),
	).Run("plot revenue by region", salesTable(t), nil)

	require.Empty(t, resp.Error)
	require.NotNil(t, resp.Outcome.Chart)
	assert.NotEmpty(t, resp.ChartPath)
	assert.Equal(t, "explained", resp.Explanation)
	assert.Equal(t, []string{"next question"}, resp.Suggestions)
}

func TestPipelineUnrecognizableQuestion(t *testing.T) {
	resp := newTestPipeline(t).Run("tell me a joke", salesTable(t), nil)

	assert.NotEmpty(t, resp.Error)
	assert.Nil(t, resp.Outcome)
	assert.Equal(t, 0.0, resp.Confidence)
	assert.Equal(t, 1, resp.Retries, "one replan was attempted before giving up")
}

func TestPipelineVisualizationHardFailure(t *testing.T) {
	// "plot" on a text-only table classifies but cannot fill a numeric
	// axis; the failure is reported at confidence zero.
	resp := newTestPipeline(t).Run("plot something", textOnlyTable(t), nil)

	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestPipelineVolatilityFollowUp(t *testing.T) {
	previous := plan.NewAggregation([]string{"units"}, []string{"product"}, plan.Sum)

	resp := newTestPipeline(t).Run("how volatile is that", salesTable(t), previous)

	require.Empty(t, resp.Error)
	assert.Equal(t, plan.Std, resp.Plan.Agg)
	assert.Equal(t, plan.Aggregation, resp.Plan.TaskType)
}

func TestPipelineDataQualityTurn(t *testing.T) {
	resp := newTestPipeline(t).Run("any duplicate rows?", salesTable(t), nil)

	require.Empty(t, resp.Error)
	require.NotNil(t, resp.Outcome.Quality)
	assert.Equal(t, 1.0, resp.Confidence)
}
