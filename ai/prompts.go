package ai

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Template names the analysis workflow loads, one <name>.txt file each
const (
	PromptClarifyHypothesis = "clarify_hypothesis"
	PromptAnalyzeHypothesis = "analyze_hypothesis"
	PromptExplainQuery      = "explain_query"
)

// loggedDirs dedups the init log line when several components share a
// prompt directory
var (
	loggedDirs   = make(map[string]struct{})
	loggedDirsMu sync.Mutex
)

// PromptManager loads prompt templates from an external directory so
// prompt wording can change without a rebuild.
type PromptManager struct {
	dir string
}

// NewPromptManager creates a manager over a template directory
func NewPromptManager(dir string) *PromptManager {
	loggedDirsMu.Lock()
	if _, seen := loggedDirs[dir]; !seen {
		loggedDirs[dir] = struct{}{}
		log.Printf("[PromptManager] Loading templates from %s", dir)
	}
	loggedDirsMu.Unlock()

	return &PromptManager{dir: dir}
}

// LoadPrompt reads a template by name
func (pm *PromptManager) LoadPrompt(name string) (string, error) {
	content, err := os.ReadFile(filepath.Join(pm.dir, name+".txt"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("prompt template not found: %s", name)
		}
		return "", fmt.Errorf("failed to load prompt %s: %w", name, err)
	}
	return string(content), nil
}

// RenderPrompt loads a template and fills its {PLACEHOLDER} slots in a
// single pass, the same contract as Compose: placeholder text inside a
// replacement value is never re-substituted, and placeholders without
// a replacement stay literal.
func (pm *PromptManager) RenderPrompt(name string, replacements map[string]string) (string, error) {
	template, err := pm.LoadPrompt(name)
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, len(replacements)*2)
	for placeholder, value := range replacements {
		pairs = append(pairs, "{"+placeholder+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template), nil
}
