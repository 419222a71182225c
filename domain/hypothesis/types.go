package hypothesis

import (
	"finhypo/domain/knowledge"
)

// DataRequirements describes the market data a hypothesis test needs
type DataRequirements struct {
	Instruments []string `json:"instruments"`
	Timeframe   string   `json:"timeframe"`
	Features    []string `json:"features"`
	Control     string   `json:"control"`
}

// Record is the typed form of a semi-structured hypothesis document.
//
// Criteria values are scalars (int, float64 or string) until a bullet
// line appends to the key, at which point the scalar is promoted to a
// []any. Raw preserves the document text verbatim.
type Record struct {
	Name               string           `json:"name"`
	Stage              knowledge.Stage  `json:"stage"`
	Description        string           `json:"description"`
	Background         string           `json:"background"`
	Mechanism          string           `json:"mechanism"`
	WhatToLookFor      []string         `json:"what_to_look_for"`
	RelatedConcepts    []string         `json:"related_concepts"`
	ConfoundingFactors []string         `json:"confounding_factors"`
	SuccessMetrics     []string         `json:"success_metrics"`
	Criteria           map[string]any   `json:"criteria"`
	DataRequirements   DataRequirements `json:"data_requirements"`
	Raw                string           `json:"-"`
}

// NewRecord creates an empty record for the given name and stage
func NewRecord(name string, stage knowledge.Stage) *Record {
	return &Record{
		Name:     name,
		Stage:    stage,
		Criteria: make(map[string]any),
	}
}
