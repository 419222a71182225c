package analysis

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// SeriesProfile summarizes one numeric series from the test data
type SeriesProfile struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ProfileData extracts every numeric series from the structured test
// data and summarizes it. With two or more equal-length series it also
// computes pairwise Pearson correlations. The returned map is empty
// when the data carries no numeric series.
func ProfileData(data map[string]any) map[string]any {
	series := make(map[string][]float64)
	for key, value := range data {
		if values, ok := numericSeries(value); ok && len(values) > 0 {
			series[key] = values
		}
	}
	if len(series) == 0 {
		return map[string]any{}
	}

	keys := make([]string, 0, len(series))
	for key := range series {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	profiles := make(map[string]SeriesProfile, len(keys))
	for _, key := range keys {
		if profile, err := profileSeries(series[key]); err == nil {
			profiles[key] = profile
		}
	}

	out := map[string]any{"series": profiles}

	correlations := make(map[string]float64)
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			x, y := series[keys[i]], series[keys[j]]
			if len(x) != len(y) || len(x) < 2 {
				continue
			}
			correlations[fmt.Sprintf("%s_vs_%s", keys[i], keys[j])] = stat.Correlation(x, y, nil)
		}
	}
	if len(correlations) > 0 {
		out["correlations"] = correlations
	}

	return out
}

func profileSeries(values []float64) (SeriesProfile, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return SeriesProfile{}, err
	}
	median, err := stats.Median(values)
	if err != nil {
		return SeriesProfile{}, err
	}
	stdDev, err := stats.StandardDeviation(values)
	if err != nil {
		return SeriesProfile{}, err
	}
	min, err := stats.Min(values)
	if err != nil {
		return SeriesProfile{}, err
	}
	max, err := stats.Max(values)
	if err != nil {
		return SeriesProfile{}, err
	}

	return SeriesProfile{
		Count:  len(values),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
	}, nil
}

// numericSeries converts the JSON-shaped slice types a data payload can
// carry into a float slice
func numericSeries(value any) ([]float64, bool) {
	switch v := value.(type) {
	case []float64:
		return v, true
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			switch n := item.(type) {
			case float64:
				out = append(out, n)
			case int:
				out = append(out, float64(n))
			default:
				return nil, false
			}
		}
		return out, len(out) > 0
	}
	return nil, false
}
