package ai

import (
	"encoding/json"
	"strings"

	"finhypo/domain/knowledge"
)

// Section headings rendered into composed prompts
const (
	contextHeading    = "Retrieved Context:"
	hypothesisHeading = "Related Hypotheses:"
	dataHeading       = "Structured Data:"
)

// Compose merges a template, retrieved chunks, the query and optional
// structured data into one prompt. Pure function, no side effects.
//
// Each named placeholder is substituted in a single deterministic pass;
// unmatched placeholders remain literal, which is intentional
// pass-through rather than an error.
func Compose(template string, chunks []knowledge.Chunk, query string, data map[string]any) string {
	general, hypothetical := splitChunks(chunks, query)

	replacer := strings.NewReplacer(
		"{CONTEXT}", renderChunks(contextHeading, general),
		"{HYPOTHESIS_CONTEXT}", renderChunks(hypothesisHeading, hypothetical),
		"{QUERY}", query,
		"{DATA}", renderData(data),
	)
	return replacer.Replace(template)
}

// splitChunks pulls hypothesis-typed chunks out into their own section
// when the query is about hypotheses or testing.
func splitChunks(chunks []knowledge.Chunk, query string) (general, hypothetical []knowledge.Chunk) {
	queryLower := strings.ToLower(query)
	separate := strings.Contains(queryLower, "hypothesis") || strings.Contains(queryLower, "test")

	for _, chunk := range chunks {
		if separate && chunk.Type.IsHypothesis() {
			hypothetical = append(hypothetical, chunk)
			continue
		}
		general = append(general, chunk)
	}
	return general, hypothetical
}

func renderChunks(heading string, chunks []knowledge.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(heading)
	sb.WriteString("\n")
	for _, chunk := range chunks {
		sb.WriteString("Relevant Knowledge: ")
		sb.WriteString(chunk.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderData serializes structured data to canonical indented JSON
// (encoding/json emits map keys sorted, keeping output deterministic).
func renderData(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return ""
	}
	return dataHeading + "\n" + string(encoded)
}
