package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileDataSummarizesSeries(t *testing.T) {
	data := map[string]any{
		"gap_size": []float64{1, 2, 3, 4, 5},
		"label":    "not numeric",
	}

	out := ProfileData(data)

	profiles, ok := out["series"].(map[string]SeriesProfile)
	require.True(t, ok)
	require.Contains(t, profiles, "gap_size")
	assert.NotContains(t, profiles, "label")

	profile := profiles["gap_size"]
	assert.Equal(t, 5, profile.Count)
	assert.InDelta(t, 3.0, profile.Mean, 1e-9)
	assert.InDelta(t, 3.0, profile.Median, 1e-9)
	assert.InDelta(t, 1.0, profile.Min, 1e-9)
	assert.InDelta(t, 5.0, profile.Max, 1e-9)
	assert.Greater(t, profile.StdDev, 0.0)
}

func TestProfileDataCorrelations(t *testing.T) {
	data := map[string]any{
		"a": []float64{1, 2, 3, 4},
		"b": []float64{2, 4, 6, 8},
		"c": []float64{1, 2}, // length mismatch, no pair with a or b
	}

	out := ProfileData(data)

	correlations, ok := out["correlations"].(map[string]float64)
	require.True(t, ok)
	assert.InDelta(t, 1.0, correlations["a_vs_b"], 1e-9)
	assert.NotContains(t, correlations, "a_vs_c")
	assert.NotContains(t, correlations, "b_vs_c")
}

func TestProfileDataMixedSliceTypes(t *testing.T) {
	data := map[string]any{
		"ints":  []int{10, 20, 30},
		"mixed": []any{1.5, 2, 3.5},
	}

	out := ProfileData(data)

	profiles := out["series"].(map[string]SeriesProfile)
	assert.Equal(t, 3, profiles["ints"].Count)
	assert.Equal(t, 3, profiles["mixed"].Count)
}

func TestProfileDataNonNumericPayloadIsEmpty(t *testing.T) {
	assert.Empty(t, ProfileData(map[string]any{"note": "text", "flags": []any{"x"}}))
	assert.Empty(t, ProfileData(nil))
}
