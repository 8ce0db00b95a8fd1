package resolve

import (
	"regexp"
	"strings"
)

// ============================================================================
// COLUMN MATCHER — Free text → best-matching column name
// ============================================================================
// Scoring, higher is better:
//   +100  normalized column name appears verbatim in the question
//   +10   per shared token between question and column name
//   +40   column name preceded by the whole word "by"
//   +20   column name preceded by the whole word "of"
// Ties keep the first candidate in input order, so declared column order
// is the tiebreak. Below the minimum score the matcher reports no match
// rather than guessing.
// ============================================================================

// DefaultMinScore gates direct question-to-column matching.
const DefaultMinScore = 20

// LooseMinScore is used for keyword-driven fallback lookups, where the
// probe text is a single word and token overlap alone should suffice.
const LooseMinScore = 10

var (
	spaceRe = regexp.MustCompile(`\s+`)
	tokenRe = regexp.MustCompile(`[a-z0-9]+`)
)

// Normalize lowercases, turns underscores into spaces, and collapses
// whitespace. Both question text and column names go through it before
// any comparison.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return spaceRe.ReplaceAllString(s, " ")
}

func tokenize(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(Normalize(s), -1) {
		set[tok] = true
	}
	return set
}

// Score rates how well a column name matches free text.
func Score(question, column string) int {
	qn := Normalize(question)
	cn := Normalize(column)

	score := 0
	if cn != "" && strings.Contains(qn, cn) {
		score += 100
	}

	qt := tokenize(qn)
	for tok := range tokenize(cn) {
		if qt[tok] {
			score += 10
		}
	}

	quoted := regexp.QuoteMeta(cn)
	if matched, _ := regexp.MatchString(`\bby\s+`+quoted+`\b`, qn); matched {
		score += 40
	}
	if matched, _ := regexp.MatchString(`\bof\s+`+quoted+`\b`, qn); matched {
		score += 20
	}
	return score
}

// BestMatch returns the highest-scoring candidate clearing minScore.
// Candidate order is stable: earlier candidates win ties.
func BestMatch(question string, candidates []string, minScore int) (string, bool) {
	best := ""
	bestScore := -1
	for _, c := range candidates {
		if s := Score(question, c); s > bestScore {
			best = c
			bestScore = s
		}
	}
	if bestScore < minScore || best == "" {
		return "", false
	}
	return best, true
}
