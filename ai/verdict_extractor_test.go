package ai

import (
	"testing"

	"finhypo/domain/verdict"

	"github.com/stretchr/testify/assert"
)

func TestExtractVerdictConfirmWithConfidence(t *testing.T) {
	response := "The data strongly supports the hypothesis.\nConfidence: 85%"

	result := ExtractVerdict(response, "gap_fill")

	assert.Equal(t, "gap_fill", result.Name)
	assert.Equal(t, verdict.StatusConfirmed, result.Status)
	assert.Equal(t, 85, result.Confidence)
	assert.Equal(t, "The data strongly supports the hypothesis.", result.Summary)
	assert.Equal(t, response, result.RawAnalysis)
}

func TestExtractVerdictLastConfidenceWins(t *testing.T) {
	response := "Confidence: 85%\nOn reflection my confidence level is 40"

	result := ExtractVerdict(response, "h")

	assert.Equal(t, 40, result.Confidence)
}

func TestExtractVerdictLastStatusWins(t *testing.T) {
	response := "At first the data seemed to confirm it.\nFurther checks refute the effect entirely."

	result := ExtractVerdict(response, "h")

	assert.Equal(t, verdict.StatusRefuted, result.Status)
	assert.Equal(t, "Further checks refute the effect entirely.", result.Summary)
}

func TestExtractVerdictFirstDigitRunOnLine(t *testing.T) {
	// A page count on a confidence line is taken as the confidence.
	// Pinned behavior, not a bug to fix here.
	result := ExtractVerdict("See the 95 page report for my confidence assessment.", "h")

	assert.Equal(t, 95, result.Confidence)
}

func TestExtractVerdictConfidenceNotClamped(t *testing.T) {
	result := ExtractVerdict("Confidence: 250", "h")

	assert.Equal(t, 250, result.Confidence)
	assert.Equal(t, verdict.StatusLikelyConfirmed, result.Status)
}

func TestExtractVerdictLikelyRefutedFromLowConfidence(t *testing.T) {
	result := ExtractVerdict("The picture is murky.\nConfidence: 20", "h")

	assert.Equal(t, verdict.StatusLikelyRefuted, result.Status)
}

func TestExtractVerdictInconclusiveDefaults(t *testing.T) {
	result := ExtractVerdict("The evidence points both ways.", "h")

	assert.Equal(t, verdict.StatusInconclusive, result.Status)
	assert.Equal(t, 50, result.Confidence)
	assert.Equal(t, "Analysis completed", result.Summary)
}

func TestExtractVerdictConfidenceDoesNotOverrideExplicitStatus(t *testing.T) {
	result := ExtractVerdict("The test refutes the hypothesis.\nConfidence: 90", "h")

	assert.Equal(t, verdict.StatusRefuted, result.Status)
	assert.Equal(t, 90, result.Confidence)
}

func TestExtractVerdictCollectsBulletFindings(t *testing.T) {
	response := "Findings:\n- Effect holds across instruments\n* Strongest in the morning session\n• Weakens after lunch"

	result := ExtractVerdict(response, "h")

	assert.Equal(t, []string{
		"Effect holds across instruments",
		"Strongest in the morning session",
		"Weakens after lunch",
	}, result.KeyFindings)
}

func TestExtractVerdictStatisticalNoteLastWins(t *testing.T) {
	response := "The correlation was weak.\nThe p-value came in at 0.03."

	result := ExtractVerdict(response, "h")

	assert.Equal(t, "The p-value came in at 0.03.", result.StatisticalEvidence["statistical_note"])
}

func TestExtractVerdictSkipsBlankLines(t *testing.T) {
	result := ExtractVerdict("\n\n  \nConfidence: 75\n\n", "h")

	assert.Equal(t, 75, result.Confidence)
	assert.Equal(t, verdict.StatusLikelyConfirmed, result.Status)
}
