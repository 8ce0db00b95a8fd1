package resolve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the keyword lists the resolver falls back on when no
// column matches the question directly. Passed as data so deployments can
// swap or localize the vocabularies without touching matching logic.
type Vocabulary struct {
	// MetricKeywords are business-metric words probed against numeric
	// columns when the question itself names no column.
	MetricKeywords []string `yaml:"metric_keywords" json:"metric_keywords"`

	// DateKeywords are probed against all column names when a time axis
	// is needed.
	DateKeywords []string `yaml:"date_keywords" json:"date_keywords"`
}

// DefaultVocabulary returns the built-in English vocabularies.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		MetricKeywords: []string{"revenue", "sales", "amount", "value", "profit", "total"},
		DateKeywords:   []string{"date", "timestamp", "time", "datetime"},
	}
}

// LoadVocabulary reads a Vocabulary from a YAML file. Lists omitted from
// the file keep their defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	var loaded Vocabulary
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return v, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if len(loaded.MetricKeywords) > 0 {
		v.MetricKeywords = loaded.MetricKeywords
	}
	if len(loaded.DateKeywords) > 0 {
		v.DateKeywords = loaded.DateKeywords
	}
	return v, nil
}
