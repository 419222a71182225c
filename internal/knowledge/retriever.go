package knowledge

import (
	"sort"
	"strings"
	"unicode/utf8"

	"finhypo/domain/knowledge"
)

// Retriever scores and ranks knowledge chunks against a query. Pure and
// reentrant: every call recomputes scores from the store's pools.
type Retriever struct {
	store *Store
}

// NewRetriever creates a retriever over an explicitly constructed store
func NewRetriever(store *Store) *Retriever {
	return &Retriever{store: store}
}

// Retrieve ranks chunks from the glossary, concept and hypothesis pools
// and returns at most limit of them, scores non-increasing. limit <= 0
// uses the default cap. An empty result is valid, never an error.
func (r *Retriever) Retrieve(query string, limit int) []knowledge.Chunk {
	if limit <= 0 {
		limit = knowledge.ChunkLimit
	}

	queryLower := strings.ToLower(query)
	queryWords := strings.Fields(queryLower)

	var chunks []knowledge.Chunk
	chunks = append(chunks, r.glossaryChunks(queryLower, queryWords)...)
	chunks = append(chunks, scoreDocuments(r.store.Concepts(), queryWords, knowledge.ChunkConcept)...)

	for _, doc := range r.store.Hypotheses("") {
		chunks = append(chunks, scoreDocuments([]knowledge.Document{doc}, queryWords, knowledge.ChunkTypeForStage(doc.Stage))...)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks
}

// QuickRetrieve is the lighter retrieval mode: OR-gated glossary match
// plus the first paragraph of each concept document that mentions any
// query word. Capped at 3 chunks, unscored.
func (r *Retriever) QuickRetrieve(query string) []knowledge.Chunk {
	const quickLimit = 3

	queryLower := strings.ToLower(query)
	queryWords := strings.Fields(queryLower)

	glossary := r.store.Glossary()

	var chunks []knowledge.Chunk
	for _, term := range sortedTerms(glossary) {
		definition := glossary[term]
		termLower := strings.ToLower(term)
		if strings.Contains(queryLower, termLower) || wordOverlap(termLower, queryWords) > 0 {
			chunks = append(chunks, knowledge.Chunk{
				Type:    knowledge.ChunkGlossary,
				Title:   term,
				Content: truncate(definition),
			})
		}
		if len(chunks) >= quickLimit {
			return chunks[:quickLimit]
		}
	}

	for _, doc := range r.store.Concepts() {
		if len(chunks) >= quickLimit {
			break
		}
		for _, para := range strings.Split(doc.Body, "\n\n") {
			if containsAnyWord(strings.ToLower(para), queryWords) {
				chunks = append(chunks, knowledge.Chunk{
					Type:    knowledge.ChunkConcept,
					Title:   doc.Title,
					Content: truncate(strings.TrimSpace(para)),
				})
				break
			}
		}
	}

	if len(chunks) > quickLimit {
		chunks = chunks[:quickLimit]
	}
	return chunks
}

// glossaryChunks gates terms on a substring-or-variant match and scores
// them: a literal substring of the query scores 1.0, anything else its
// term-word overlap ratio.
func (r *Retriever) glossaryChunks(queryLower string, queryWords []string) []knowledge.Chunk {
	glossary := r.store.Glossary()

	var chunks []knowledge.Chunk
	for _, term := range sortedTerms(glossary) {
		definition := glossary[term]
		termLower := strings.ToLower(term)

		matched := false
		for _, variant := range termVariants(termLower) {
			if strings.Contains(queryLower, variant) {
				matched = true
				break
			}
		}
		overlap := wordOverlap(termLower, queryWords)
		if !matched && overlap == 0 {
			continue
		}

		score := overlap
		if strings.Contains(queryLower, termLower) {
			score = 1.0
		}
		chunks = append(chunks, knowledge.Chunk{
			Type:    knowledge.ChunkGlossary,
			Title:   term,
			Content: truncate(definition),
			Score:   score,
		})
	}
	return chunks
}

// termVariants returns the normalized forms a term is gated on: the raw
// lowercase term, its naive plural, and underscores replaced by spaces.
func termVariants(termLower string) []string {
	variants := []string{termLower, termLower + "s"}
	if spaced := strings.ReplaceAll(termLower, "_", " "); spaced != termLower {
		variants = append(variants, spaced)
	}
	return variants
}

// wordOverlap computes |term-words ∩ query-words| / |term-words| with
// term words taken from underscore and space splits.
func wordOverlap(termLower string, queryWords []string) float64 {
	termWords := strings.Fields(strings.ReplaceAll(termLower, "_", " "))
	if len(termWords) == 0 {
		return 0
	}

	querySet := make(map[string]struct{}, len(queryWords))
	for _, w := range queryWords {
		querySet[w] = struct{}{}
	}

	matched := 0
	for _, w := range termWords {
		if _, ok := querySet[w]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(termWords))
}

// scoreDocuments scores each document by the fraction of query words
// appearing as substrings of its text; documents at or below the 0.3
// cutoff are dropped entirely.
func scoreDocuments(docs []knowledge.Document, queryWords []string, chunkType knowledge.ChunkType) []knowledge.Chunk {
	if len(queryWords) == 0 {
		return nil
	}

	var chunks []knowledge.Chunk
	for _, doc := range docs {
		docLower := strings.ToLower(doc.Body)
		matched := 0
		for _, w := range queryWords {
			if strings.Contains(docLower, w) {
				matched++
			}
		}
		score := float64(matched) / float64(len(queryWords))
		if score <= 0.3 {
			continue
		}
		chunks = append(chunks, knowledge.Chunk{
			Type:    chunkType,
			Title:   doc.Title,
			Content: bestExcerpt(doc.Body, queryWords),
			Score:   score,
		})
	}
	return chunks
}

// bestExcerpt picks the blank-line-delimited paragraph containing the
// most query words (first seen wins ties), falling back to the start of
// the document when nothing matches.
func bestExcerpt(body string, queryWords []string) string {
	paragraphs := strings.Split(body, "\n\n")

	best := ""
	bestCount := 0
	for _, para := range paragraphs {
		paraLower := strings.ToLower(para)
		count := 0
		for _, w := range queryWords {
			if strings.Contains(paraLower, w) {
				count++
			}
		}
		if count > bestCount {
			best = para
			bestCount = count
		}
	}

	if bestCount == 0 {
		return truncate(body)
	}
	return truncate(strings.TrimSpace(best))
}

// sortedTerms keeps tie ordering deterministic across runs
func sortedTerms(glossary map[string]string) []string {
	terms := make([]string, 0, len(glossary))
	for term := range glossary {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func containsAnyWord(textLower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(textLower, w) {
			return true
		}
	}
	return false
}

// truncate caps excerpt length at ExcerptLimit characters, cutting on
// a rune boundary so multi-byte text stays valid UTF-8.
func truncate(text string) string {
	if utf8.RuneCountInString(text) <= knowledge.ExcerptLimit {
		return text
	}
	return string([]rune(text)[:knowledge.ExcerptLimit]) + "..."
}
