package ai

import (
	"regexp"
	"strconv"
	"strings"

	"finhypo/domain/verdict"
)

// Keyword sets driving the line-local classification
var (
	confirmWords = []string{"confirm", "support", "validate"}
	refuteWords  = []string{"refute", "reject", "disprove"}
	statWords    = []string{"p-value", "correlation", "significance", "probability"}

	digitRunRe = regexp.MustCompile(`\d+`)
)

// ExtractVerdict converts unstructured model response text into a
// structured test result. The hypothesis name is context only.
//
// The classifier is deliberately crude: line-local, no cross-line
// context, last match wins on overwrites, and confidence is taken from
// the first digit run of any line mentioning confidence without
// clamping or semantic validation. This behavior is pinned by
// regression tests; do not "fix" it here.
func ExtractVerdict(response string, name string) *verdict.TestResult {
	result := verdict.NewTestResult(name)
	result.RawAnalysis = response

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)

		if strings.Contains(lower, "confidence") || strings.Contains(lower, "confident") {
			if run := digitRunRe.FindString(trimmed); run != "" {
				if value, err := strconv.Atoi(run); err == nil {
					result.Confidence = value
				}
			}
		}

		if containsAny(lower, confirmWords) {
			result.Status = verdict.StatusConfirmed
			result.Summary = trimmed
		} else if containsAny(lower, refuteWords) {
			result.Status = verdict.StatusRefuted
			result.Summary = trimmed
		}

		if finding, ok := stripBulletMarker(trimmed); ok && finding != "" {
			result.KeyFindings = append(result.KeyFindings, finding)
		}

		if containsAny(lower, statWords) {
			result.StatisticalEvidence["statistical_note"] = trimmed
		}
	}

	// Lean on confidence only when no explicit signal landed
	if result.Status == verdict.StatusInconclusive {
		if result.Confidence > 70 {
			result.Status = verdict.StatusLikelyConfirmed
		} else if result.Confidence < 30 {
			result.Status = verdict.StatusLikelyRefuted
		}
	}

	return result
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func stripBulletMarker(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}
