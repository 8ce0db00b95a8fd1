package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVocabularyPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metric_keywords: [umsatz, erloes]\n"), 0o644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"umsatz", "erloes"}, v.MetricKeywords)
	assert.Equal(t, DefaultVocabulary().DateKeywords, v.DateKeywords, "omitted list keeps defaults")
}

func TestLoadVocabularyMissingFile(t *testing.T) {
	v, err := LoadVocabulary("no_such_vocab.yaml")
	assert.Error(t, err)
	assert.Equal(t, DefaultVocabulary(), v, "defaults returned alongside the error")
}

func TestLoadVocabularyBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metric_keywords: {broken"), 0o644))

	_, err := LoadVocabulary(path)
	assert.Error(t, err)
}
