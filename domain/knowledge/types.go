package knowledge

// DocumentKind classifies a knowledge document
type DocumentKind string

const (
	KindConcept    DocumentKind = "concept"
	KindHypothesis DocumentKind = "hypothesis"
)

// Stage tracks the lifecycle of a hypothesis document
type Stage string

const (
	StageActive Stage = "active"
	StageTested Stage = "tested"
)

// Document is a knowledge document loaded from the document tree.
// Read-only after load except for the explicit active->tested stage move.
type Document struct {
	Path  string
	Title string
	Body  string
	Kind  DocumentKind
	Stage Stage // only meaningful for hypothesis documents
}

// ChunkType tags a retrieved chunk; the set is closed and callers
// dispatch by switching on it rather than probing for keys.
type ChunkType string

const (
	ChunkGlossary         ChunkType = "glossary"
	ChunkConcept          ChunkType = "concept"
	ChunkActiveHypothesis ChunkType = "active_hypothesis"
	ChunkTestedHypothesis ChunkType = "tested_hypothesis"
)

// IsHypothesis reports whether the chunk came from a hypothesis document
func (t ChunkType) IsHypothesis() bool {
	return t == ChunkActiveHypothesis || t == ChunkTestedHypothesis
}

// Chunk is a scored unit of retrieved knowledge. Chunks are transient:
// recomputed per query and never cached or persisted.
type Chunk struct {
	Type    ChunkType
	Title   string
	Content string
	Score   float64
}

// ChunkLimit is the default cap on retrieval results
const ChunkLimit = 5

// ExcerptLimit bounds chunk content length in characters
const ExcerptLimit = 500

// ChunkTypeForStage maps a hypothesis stage to its chunk type
func ChunkTypeForStage(stage Stage) ChunkType {
	if stage == StageTested {
		return ChunkTestedHypothesis
	}
	return ChunkActiveHypothesis
}
