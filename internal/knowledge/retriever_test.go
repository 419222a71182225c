package knowledge

import (
	"strings"
	"testing"
	"unicode/utf8"

	domknowledge "finhypo/domain/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveLiteralGlossaryMatchScoresOne(t *testing.T) {
	base := writeKnowledgeTree(t, map[string]string{
		"FVG": "Fair Value Gap - a price inefficiency between consecutive candles",
	})
	retriever := NewRetriever(NewStore(base))

	chunks := retriever.Retrieve("What is an FVG?", 0)
	require.NotEmpty(t, chunks)
	assert.Equal(t, domknowledge.ChunkGlossary, chunks[0].Type)
	assert.Equal(t, "FVG", chunks[0].Title)
	assert.Equal(t, 1.0, chunks[0].Score)
}

func TestRetrievePartialOverlapRanksBelowLiteral(t *testing.T) {
	base := writeKnowledgeTree(t, map[string]string{
		"order block":    "institutional footprint left on the chart",
		"order flow":     "the stream of buy and sell orders",
		"liquidity pool": "resting stops above or below structure",
	})
	retriever := NewRetriever(NewStore(base))

	chunks := retriever.Retrieve("how does an order block form", 0)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "order block", chunks[0].Title)
	assert.Equal(t, 1.0, chunks[0].Score)

	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].Score, chunks[i-1].Score,
			"scores must be non-increasing in return order")
	}
}

func TestRetrieveRespectsCap(t *testing.T) {
	glossary := map[string]string{
		"gap one": "a", "gap two": "b", "gap three": "c",
		"gap four": "d", "gap five": "e", "gap six": "f",
	}
	base := writeKnowledgeTree(t, glossary)
	retriever := NewRetriever(NewStore(base))

	assert.LessOrEqual(t, len(retriever.Retrieve("gap", 0)), 5)
	assert.LessOrEqual(t, len(retriever.Retrieve("gap", 2)), 2)
}

func TestRetrieveDropsWeakDocuments(t *testing.T) {
	base := writeKnowledgeTree(t, nil)
	writeDoc(t, base, ConceptsDir, "structure.md",
		"# Market Structure\n\nSwing highs and swing lows define market structure.")
	writeDoc(t, base, ConceptsDir, "unrelated.md",
		"# Options Greeks\n\nDelta measures directional exposure.")
	retriever := NewRetriever(NewStore(base))

	chunks := retriever.Retrieve("swing highs define market structure", 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Market Structure", chunks[0].Title)
	// One word of five matching is at most 0.2, below the 0.3 cutoff
	for _, chunk := range chunks {
		assert.Greater(t, chunk.Score, 0.3)
	}
}

func TestRetrieveExcerptPicksBestParagraph(t *testing.T) {
	body := "# Gaps\n\nIntro paragraph about candles.\n\nFair value gaps appear when price moves impulsively leaving an imbalance.\n\nClosing remarks."
	base := writeKnowledgeTree(t, nil)
	writeDoc(t, base, ConceptsDir, "gaps.md", body)
	retriever := NewRetriever(NewStore(base))

	chunks := retriever.Retrieve("fair value gaps imbalance", 0)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Content, "imbalance")
	assert.NotContains(t, chunks[0].Content, "Closing remarks")
}

func TestRetrieveExcerptTruncatesLongParagraphs(t *testing.T) {
	long := "fair value gap " + strings.Repeat("imbalance and displacement ", 40)
	base := writeKnowledgeTree(t, nil)
	writeDoc(t, base, ConceptsDir, "gaps.md", "# Gaps\n\n"+long)
	retriever := NewRetriever(NewStore(base))

	chunks := retriever.Retrieve("fair value gap", 0)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0].Content, domknowledge.ExcerptLimit+3)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "..."))
}

func TestRetrieveTruncationKeepsValidUTF8(t *testing.T) {
	definition := "Lücke im Orderbuch: " + strings.Repeat("präzise Füllung über Nacht, ", 30)
	require.Greater(t, utf8.RuneCountInString(definition), domknowledge.ExcerptLimit)

	base := writeKnowledgeTree(t, map[string]string{"FVG": definition})
	retriever := NewRetriever(NewStore(base))

	chunks := retriever.Retrieve("What is an FVG?", 0)
	require.NotEmpty(t, chunks)
	content := chunks[0].Content
	assert.True(t, utf8.ValidString(content))
	assert.Equal(t, domknowledge.ExcerptLimit+3, utf8.RuneCountInString(content))
	assert.True(t, strings.HasSuffix(content, "..."))
}

func TestRetrieveHypothesisChunksCarryStage(t *testing.T) {
	base := writeKnowledgeTree(t, nil)
	writeDoc(t, base, ActiveHypsDir, "gap_fill.md",
		"# Gap Fill\n\ngap fill tendency within the week")
	writeDoc(t, base, TestedHypsDir, "gap_fade.md",
		"# Gap Fade\n\ngap fade tendency at the open")
	retriever := NewRetriever(NewStore(base))

	chunks := retriever.Retrieve("gap tendency", 0)
	types := make(map[domknowledge.ChunkType]bool)
	for _, chunk := range chunks {
		types[chunk.Type] = true
	}
	assert.True(t, types[domknowledge.ChunkActiveHypothesis])
	assert.True(t, types[domknowledge.ChunkTestedHypothesis])
}

func TestRetrieveEmptyResultIsValid(t *testing.T) {
	base := writeKnowledgeTree(t, map[string]string{"FVG": "Fair Value Gap"})
	retriever := NewRetriever(NewStore(base))

	assert.Empty(t, retriever.Retrieve("zzz qqq xxx", 0))
}

func TestQuickRetrieveCapsAtThree(t *testing.T) {
	base := writeKnowledgeTree(t, map[string]string{
		"gap one": "a", "gap two": "b", "gap three": "c", "gap four": "d",
	})
	writeDoc(t, base, ConceptsDir, "gaps.md", "# Gaps\n\nAll about gap behavior.")
	retriever := NewRetriever(NewStore(base))

	chunks := retriever.QuickRetrieve("gap")
	assert.LessOrEqual(t, len(chunks), 3)
	for _, chunk := range chunks {
		assert.Zero(t, chunk.Score, "quick mode is unscored")
	}
}

func TestQuickRetrieveConceptFirstMatchingParagraph(t *testing.T) {
	base := writeKnowledgeTree(t, nil)
	writeDoc(t, base, ConceptsDir, "sessions.md",
		"# Sessions\n\nNothing relevant here.\n\nGap behavior depends on session context.")
	retriever := NewRetriever(NewStore(base))

	chunks := retriever.QuickRetrieve("gap")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Gap behavior depends on session context.", chunks[0].Content)
}
