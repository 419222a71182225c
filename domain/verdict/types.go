package verdict

import (
	"encoding/json"

	"finhypo/domain/core"
)

// Status represents the outcome classification of a hypothesis test
type Status string

const (
	StatusError           Status = "error"
	StatusClarified       Status = "clarified"
	StatusConfirmed       Status = "confirmed"
	StatusRefuted         Status = "refuted"
	StatusInconclusive    Status = "inconclusive"
	StatusLikelyConfirmed Status = "likely_confirmed"
	StatusLikelyRefuted   Status = "likely_refuted"
)

// TestResult is the structured outcome of one hypothesis test run.
// Immutable value, one per run, canonically JSON-serializable.
//
// Confidence is intended to live in [0,100] but is never clamped; the
// extraction heuristics can and do push it outside that range.
type TestResult struct {
	Name                 string            `json:"name"`
	Timestamp            core.Timestamp    `json:"timestamp"`
	Status               Status            `json:"status"`
	Confidence           int               `json:"confidence"`
	Summary              string            `json:"summary"`
	KeyFindings          []string          `json:"key_findings"`
	StatisticalEvidence  map[string]string `json:"statistical_evidence"`
	TradingImplications  string            `json:"trading_implications"`
	FurtherTestingNeeded []string          `json:"further_testing_needed"`
	RawAnalysis          string            `json:"raw_analysis"`
}

// NewTestResult creates a result in its initial extraction state
func NewTestResult(name string) *TestResult {
	return &TestResult{
		Name:                 name,
		Timestamp:            core.Now(),
		Status:               StatusInconclusive,
		Confidence:           50,
		Summary:              "Analysis completed",
		KeyFindings:          []string{},
		StatisticalEvidence:  map[string]string{},
		FurtherTestingNeeded: []string{},
	}
}

// Marshal returns the canonical JSON encoding
func (r *TestResult) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Unmarshal parses a canonical JSON encoding
func Unmarshal(data []byte) (*TestResult, error) {
	var r TestResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
