package hypothesis

import (
	"regexp"
	"strconv"
	"strings"

	"finhypo/domain/hypothesis"
	domknowledge "finhypo/domain/knowledge"
	"finhypo/internal/knowledge"
)

// Parser converts semi-structured hypothesis documents into typed
// records. Parsing is pure and idempotent; malformed sections and
// criteria lines are skipped silently rather than failing the record.
type Parser struct {
	store *knowledge.Store
}

// NewParser creates a parser over an explicitly constructed store
func NewParser(store *knowledge.Store) *Parser {
	return &Parser{store: store}
}

// ParseNamed resolves a hypothesis document by name under the active
// then tested pools and parses it. Absence is a NotFound domain error,
// recovered by callers rather than surfaced.
func (p *Parser) ParseNamed(name string) (*hypothesis.Record, error) {
	doc, err := p.store.FindHypothesis(name)
	if err != nil {
		return nil, err
	}
	return Parse(name, doc.Stage, doc.Body), nil
}

type sectionField int

const (
	fieldDescription sectionField = iota
	fieldBackground
	fieldMechanism
	fieldWhatToLookFor
	fieldRelatedConcepts
	fieldConfounding
	fieldSuccessMetrics
	fieldCriteria
	fieldDataRequirements
)

// sectionRoutes maps title fragments to record fields. The order is a
// fixed priority: the first matching fragment wins.
var sectionRoutes = []struct {
	fragment string
	field    sectionField
}{
	{"statement", fieldDescription},
	{"description", fieldDescription},
	{"background", fieldBackground},
	{"mechanism", fieldMechanism},
	{"look for", fieldWhatToLookFor},
	{"related concept", fieldRelatedConcepts},
	{"confounding", fieldConfounding},
	{"success metric", fieldSuccessMetrics},
	{"criteria", fieldCriteria},
	{"data requirement", fieldDataRequirements},
}

var (
	ordinalRe  = regexp.MustCompile(`^\d+\.\s*`)
	criteriaRe = regexp.MustCompile(`^(?:[-*]\s+)?\*\*(.+?)\*\*:\s*(.*)$`)
)

// Parse converts a hypothesis document into a typed record. Sections
// are delimited by level-2 headings; the section's first line is its
// title, the rest its body. Unrecognized titles are dropped silently.
func Parse(name string, stage domknowledge.Stage, text string) *hypothesis.Record {
	record := hypothesis.NewRecord(name, stage)
	record.Raw = text

	for _, section := range splitSections(text) {
		field, ok := routeTitle(section.title)
		if !ok {
			continue
		}
		switch field {
		case fieldDescription:
			record.Description = strings.TrimSpace(section.body)
		case fieldBackground:
			record.Background = strings.TrimSpace(section.body)
		case fieldMechanism:
			record.Mechanism = strings.TrimSpace(section.body)
		case fieldWhatToLookFor:
			record.WhatToLookFor = parseList(section.body)
		case fieldRelatedConcepts:
			record.RelatedConcepts = parseList(section.body)
		case fieldConfounding:
			record.ConfoundingFactors = parseList(section.body)
		case fieldSuccessMetrics:
			record.SuccessMetrics = parseList(section.body)
		case fieldCriteria:
			parseCriteria(section.body, record.Criteria)
		case fieldDataRequirements:
			record.DataRequirements = parseDataRequirements(section.body)
		}
	}
	return record
}

type section struct {
	title string
	body  string
}

// splitSections cuts the document on "## " heading markers. Text before
// the first marker is not a section.
func splitSections(text string) []section {
	var sections []section
	var current *section

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "## ") {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &section{title: strings.TrimSpace(strings.TrimPrefix(line, "## "))}
			continue
		}
		if current != nil {
			current.body += line + "\n"
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

func routeTitle(title string) (sectionField, bool) {
	lower := strings.ToLower(title)
	for _, route := range sectionRoutes {
		if strings.Contains(lower, route.fragment) {
			return route.field, true
		}
	}
	return 0, false
}

// parseList collects bullet ("-", "*") or ordinal ("1.", "2.", ...)
// prefixed lines into an ordered list, skipping blanks.
func parseList(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		item, ok := stripListMarker(strings.TrimSpace(line))
		if ok && item != "" {
			items = append(items, item)
		}
	}
	return items
}

func stripListMarker(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "- "):
		return strings.TrimSpace(line[2:]), true
	case strings.HasPrefix(line, "* "):
		return strings.TrimSpace(line[2:]), true
	case ordinalRe.MatchString(line):
		return strings.TrimSpace(ordinalRe.ReplaceAllString(line, "")), true
	}
	return "", false
}

// parseCriteria fills the criteria mapping. A "**Key**: value" line
// opens a current key; later bullet lines append to it, promoting the
// scalar to a list on the first append.
func parseCriteria(body string, criteria map[string]any) {
	currentKey := ""
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := criteriaRe.FindStringSubmatch(trimmed); m != nil {
			key := knowledge.NormalizeName(m[1])
			criteria[key] = coerceValue(strings.TrimSpace(m[2]))
			currentKey = key
			continue
		}

		item, ok := stripListMarker(trimmed)
		if !ok || item == "" || currentKey == "" {
			continue
		}
		value := coerceValue(item)
		switch existing := criteria[currentKey].(type) {
		case []any:
			criteria[currentKey] = append(existing, value)
		default:
			criteria[currentKey] = []any{existing, value}
		}
	}
}

// coerceValue treats any value containing a decimal point as a float
// candidate, then an int, then leaves it as a string. "10." therefore
// parses as float64(10) - observed upstream behavior, preserved.
func coerceValue(value string) any {
	if strings.Contains(value, ".") {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return value
}

// parseDataRequirements routes "- key: value" lines by substring match
// on the key name. Instruments and features are comma-split.
func parseDataRequirements(body string) hypothesis.DataRequirements {
	var reqs hypothesis.DataRequirements
	for _, line := range strings.Split(body, "\n") {
		item, ok := stripListMarker(strings.TrimSpace(line))
		if !ok {
			continue
		}
		key, value, found := strings.Cut(item, ":")
		if !found {
			continue
		}
		keyLower := strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch {
		case strings.Contains(keyLower, "instrument"):
			reqs.Instruments = commaSplit(value)
		case strings.Contains(keyLower, "timeframe"), strings.Contains(keyLower, "time frame"):
			reqs.Timeframe = value
		case strings.Contains(keyLower, "feature"):
			reqs.Features = commaSplit(value)
		case strings.Contains(keyLower, "control"):
			reqs.Control = value
		}
	}
	return reqs
}

func commaSplit(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
