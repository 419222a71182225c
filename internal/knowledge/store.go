package knowledge

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"finhypo/domain/core"
	"finhypo/domain/knowledge"
	"finhypo/internal/errors"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/sync/errgroup"
)

// Document tree layout under the base directory
const (
	GlossaryFile  = "trading_glossary.json"
	ConceptsDir   = "core_concepts"
	ActiveHypsDir = "hypotheses/active"
	TestedHypsDir = "hypotheses/tested"
)

// Store holds the glossary and knowledge documents, eagerly loaded at
// construction. Reads are lock-free on the document slices (read-only
// after load except the explicit stage move); glossary mutation and the
// stage move are guarded by a mutex.
type Store struct {
	baseDir string

	mu         sync.RWMutex
	glossary   map[string]string
	concepts   []knowledge.Document
	hypotheses []knowledge.Document
}

// NewStore loads the document tree rooted at baseDir. Missing paths are
// non-fatal: logged and treated as empty.
func NewStore(baseDir string) *Store {
	s := &Store{
		baseDir:  baseDir,
		glossary: make(map[string]string),
	}

	var (
		concepts []knowledge.Document
		active   []knowledge.Document
		tested   []knowledge.Document
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		s.loadGlossary()
		return nil
	})
	g.Go(func() error {
		concepts = loadDocuments(filepath.Join(baseDir, ConceptsDir), knowledge.KindConcept, "")
		return nil
	})
	g.Go(func() error {
		active = loadDocuments(filepath.Join(baseDir, ActiveHypsDir), knowledge.KindHypothesis, knowledge.StageActive)
		return nil
	})
	g.Go(func() error {
		tested = loadDocuments(filepath.Join(baseDir, TestedHypsDir), knowledge.KindHypothesis, knowledge.StageTested)
		return nil
	})
	_ = g.Wait() // loaders never fail, they degrade to empty pools

	s.concepts = concepts
	s.hypotheses = append(active, tested...)

	log.Printf("[KnowledgeStore] Loaded %d glossary terms, %d concepts, %d hypotheses from %s",
		len(s.glossary), len(s.concepts), len(s.hypotheses), baseDir)

	return s
}

func (s *Store) loadGlossary() {
	path := filepath.Join(s.baseDir, GlossaryFile)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[KnowledgeStore] Glossary not loaded (%v), starting empty", err)
		return
	}

	var terms map[string]string
	if err := json.Unmarshal(data, &terms); err != nil {
		log.Printf("[KnowledgeStore] Glossary unreadable at %s (%v), starting empty", path, err)
		return
	}

	s.mu.Lock()
	s.glossary = terms
	s.mu.Unlock()
}

func loadDocuments(dir string, kind knowledge.DocumentKind, stage knowledge.Stage) []knowledge.Document {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("[KnowledgeStore] Directory %s not loaded (%v), treating as empty", dir, err)
		return nil
	}

	var docs []knowledge.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[KnowledgeStore] Skipping unreadable document %s: %v", path, err)
			continue
		}
		body := string(data)
		title := documentTitle(body)
		if title == "" {
			title = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}
		docs = append(docs, knowledge.Document{
			Path:  path,
			Title: title,
			Body:  body,
			Kind:  kind,
			Stage: stage,
		})
	}
	return docs
}

// documentTitle extracts the first level-1 ATX heading from markdown text
func documentTitle(body string) string {
	p := parser.New()
	doc := p.Parse([]byte(body))

	var title string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if title != "" {
			return ast.Terminate
		}
		heading, ok := node.(*ast.Heading)
		if !ok || !entering || heading.Level != 1 {
			return ast.GoToNext
		}
		var sb strings.Builder
		ast.WalkFunc(heading, func(child ast.Node, entering bool) ast.WalkStatus {
			if text, ok := child.(*ast.Text); ok && entering {
				sb.Write(text.Literal)
			}
			return ast.GoToNext
		})
		title = strings.TrimSpace(sb.String())
		return ast.Terminate
	})
	return title
}

// Lookup returns the definition for a term: case-sensitive hit first,
// then a case-insensitive scan.
func (s *Store) Lookup(term string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if def, ok := s.glossary[term]; ok {
		return def, true
	}
	lower := strings.ToLower(term)
	for t, def := range s.glossary {
		if strings.ToLower(t) == lower {
			return def, true
		}
	}
	return "", false
}

// Add stores a term definition in memory unconditionally (last write
// wins) and attempts to persist the full mapping. A write failure is
// returned as a PERSISTENCE_ERROR without rolling back memory.
func (s *Store) Add(term, definition string) error {
	s.mu.Lock()
	s.glossary[term] = definition
	snapshot := make(map[string]string, len(s.glossary))
	for t, def := range s.glossary {
		snapshot[t] = def
	}
	s.mu.Unlock()

	path := filepath.Join(s.baseDir, GlossaryFile)
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.PersistenceError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("[KnowledgeStore] Glossary write failed for %q, in-memory state kept: %v", term, err)
		return errors.PersistenceError(path, err)
	}
	return nil
}

// ListRelated returns every stored term that contains, or is contained
// in, the query term (case-insensitive). The query term matching itself
// is intentional.
func (s *Store) ListRelated(term string) []string {
	lower := strings.ToLower(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var related []string
	for t := range s.glossary {
		tl := strings.ToLower(t)
		if strings.Contains(tl, lower) || strings.Contains(lower, tl) {
			related = append(related, t)
		}
	}
	return related
}

// Glossary returns a copy of the term mapping
func (s *Store) Glossary() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.glossary))
	for t, def := range s.glossary {
		out[t] = def
	}
	return out
}

// Concepts returns the loaded concept documents
func (s *Store) Concepts() []knowledge.Document {
	return s.concepts
}

// Hypotheses returns hypothesis documents for one stage, or all of them
// when stage is empty
func (s *Store) Hypotheses(stage knowledge.Stage) []knowledge.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if stage == "" {
		return append([]knowledge.Document(nil), s.hypotheses...)
	}
	var docs []knowledge.Document
	for _, doc := range s.hypotheses {
		if doc.Stage == stage {
			docs = append(docs, doc)
		}
	}
	return docs
}

// FindHypothesis locates a hypothesis document by name, checking the
// active pool before the tested pool. Matches on the normalized file
// base name or document title.
func (s *Store) FindHypothesis(name string) (knowledge.Document, error) {
	want := NormalizeName(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, stage := range []knowledge.Stage{knowledge.StageActive, knowledge.StageTested} {
		for _, doc := range s.hypotheses {
			if doc.Stage != stage {
				continue
			}
			base := strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))
			if NormalizeName(base) == want || NormalizeName(doc.Title) == want {
				return doc, nil
			}
		}
	}
	return knowledge.Document{}, core.NewNotFoundError("hypothesis", name)
}

// PromoteHypothesis moves a hypothesis document from active to tested,
// on disk and in memory.
func (s *Store) PromoteHypothesis(name string) error {
	want := NormalizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range s.hypotheses {
		if doc.Stage != knowledge.StageActive {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))
		if NormalizeName(base) != want && NormalizeName(doc.Title) != want {
			continue
		}

		testedDir := filepath.Join(s.baseDir, TestedHypsDir)
		if err := os.MkdirAll(testedDir, 0o755); err != nil {
			return errors.PersistenceError(testedDir, err)
		}
		newPath := filepath.Join(testedDir, filepath.Base(doc.Path))
		if err := os.Rename(doc.Path, newPath); err != nil {
			return errors.PersistenceError(doc.Path, err)
		}

		s.hypotheses[i].Path = newPath
		s.hypotheses[i].Stage = knowledge.StageTested
		log.Printf("[KnowledgeStore] Promoted hypothesis %q to tested", name)
		return nil
	}
	return core.NewNotFoundError("active hypothesis", name)
}

// NormalizeName lowercases a hypothesis name and joins words with
// underscores, matching the document file naming convention.
func NormalizeName(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(fields, "_")
}
