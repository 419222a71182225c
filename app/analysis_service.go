package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"finhypo/ai"
	"finhypo/domain/core"
	"finhypo/domain/hypothesis"
	"finhypo/domain/verdict"
	"finhypo/internal/analysis"
	"finhypo/internal/config"
	hypparser "finhypo/internal/hypothesis"
	"finhypo/internal/knowledge"
	"finhypo/ports"
)

// AnalysisService drives the clarify->analyze workflow for hypothesis
// tests. One-shot per call, no retries or resumption; each public
// operation issues at most two sequential model calls, each a
// caller-controlled suspension point via ctx.
type AnalysisService struct {
	retriever *knowledge.Retriever
	parser    *hypparser.Parser
	prompts   *ai.PromptManager
	llm       ports.LLMClient
	cfg       config.AIConfig
}

// NewAnalysisService wires the service from explicitly constructed
// dependencies; nothing here is a global.
func NewAnalysisService(
	retriever *knowledge.Retriever,
	parser *hypparser.Parser,
	prompts *ai.PromptManager,
	llm ports.LLMClient,
	cfg config.AIConfig,
) *AnalysisService {
	return &AnalysisService{
		retriever: retriever,
		parser:    parser,
		prompts:   prompts,
		llm:       llm,
		cfg:       cfg,
	}
}

// TestHypothesis runs one hypothesis test. With no data it clarifies
// what data the test needs; with data it analyzes and extracts a
// verdict. An unknown name yields a terminal error-status result. A
// model-call failure is recovered here into a nil result with a logged
// message - no error crosses the module boundary in normal operation.
func (s *AnalysisService) TestHypothesis(ctx context.Context, name string, data map[string]any) *verdict.TestResult {
	result, err := s.runTest(ctx, name, data)
	if err != nil {
		log.Printf("[AnalysisService] Hypothesis test failed for %q: %v", name, err)
		return nil
	}
	return result
}

func (s *AnalysisService) runTest(ctx context.Context, name string, data map[string]any) (*verdict.TestResult, error) {
	runID := core.NewRunID()
	log.Printf("[AnalysisService] Run %s: testing hypothesis %q (data keys: %d)", runID, name, len(data))

	record, err := s.parser.ParseNamed(name)
	if err != nil {
		if core.IsNotFoundError(err) {
			result := verdict.NewTestResult(name)
			result.Status = verdict.StatusError
			result.Confidence = 0
			result.Summary = fmt.Sprintf("Hypothesis %q not found under active or tested documents", name)
			return result, nil
		}
		return nil, err
	}

	if len(data) == 0 {
		return s.clarify(ctx, record)
	}
	return s.analyze(ctx, record, data)
}

// clarify asks the model what data the hypothesis test needs. Terminal:
// status clarified, confidence fixed at 50, exactly one
// further-testing entry.
func (s *AnalysisService) clarify(ctx context.Context, record *hypothesis.Record) (*verdict.TestResult, error) {
	query := "clarify hypothesis: " + record.Name
	chunks := s.retriever.Retrieve(query, 0)

	template, err := s.prompts.RenderPrompt(ai.PromptClarifyHypothesis, recordReplacements(record))
	if err != nil {
		return nil, err
	}
	prompt := ai.Compose(template, chunks, query, nil)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result := verdict.NewTestResult(record.Name)
	result.Status = verdict.StatusClarified
	result.Confidence = 50
	result.Summary = firstLine(content, "Clarification produced")
	result.RawAnalysis = content
	result.FurtherTestingNeeded = []string{dataRequest(record)}
	return result, nil
}

// analyze profiles the supplied data, composes the analysis prompt and
// extracts the verdict from the model's free text.
func (s *AnalysisService) analyze(ctx context.Context, record *hypothesis.Record, data map[string]any) (*verdict.TestResult, error) {
	enriched := make(map[string]any, len(data)+1)
	for key, value := range data {
		enriched[key] = value
	}
	if profile := analysis.ProfileData(data); len(profile) > 0 {
		enriched["data_profile"] = profile
	}

	query := "test hypothesis: " + record.Name
	chunks := s.retriever.Retrieve(query, 0)

	template, err := s.prompts.RenderPrompt(ai.PromptAnalyzeHypothesis, recordReplacements(record))
	if err != nil {
		return nil, err
	}
	prompt := ai.Compose(template, chunks, query, enriched)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return ai.ExtractVerdict(content, record.Name), nil
}

// Explain answers a general knowledge question using the lighter
// retrieval mode. Model failures propagate; the caller decides whether
// to recover them.
func (s *AnalysisService) Explain(ctx context.Context, query string) (string, error) {
	chunks := s.retriever.QuickRetrieve(query)

	template, err := s.prompts.LoadPrompt(ai.PromptExplainQuery)
	if err != nil {
		return "", err
	}
	prompt := ai.Compose(template, chunks, query, nil)

	return s.complete(ctx, prompt)
}

func (s *AnalysisService) complete(ctx context.Context, prompt string) (string, error) {
	return s.llm.ChatCompletion(ctx, ports.CompletionRequest{
		Model: s.cfg.OpenAIModel,
		Messages: []ports.Message{
			{Role: ports.RoleSystem, Content: s.cfg.SystemContext},
			{Role: ports.RoleUser, Content: prompt},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
}

// recordReplacements binds hypothesis record fields to prompt template
// placeholders
func recordReplacements(record *hypothesis.Record) map[string]string {
	criteria := "{}"
	if encoded, err := json.Marshal(record.Criteria); err == nil {
		criteria = string(encoded)
	}
	return map[string]string{
		"HYPOTHESIS_NAME": record.Name,
		"STAGE":           string(record.Stage),
		"DESCRIPTION":     record.Description,
		"MECHANISM":       record.Mechanism,
		"CRITERIA_JSON":   criteria,
		"LOOK_FOR":        strings.Join(record.WhatToLookFor, "; "),
	}
}

// dataRequest builds the single further-testing entry for a clarified
// result from the record's data requirements.
func dataRequest(record *hypothesis.Record) string {
	reqs := record.DataRequirements
	parts := []string{"Provide test data"}
	if len(reqs.Instruments) > 0 {
		parts = append(parts, "for "+strings.Join(reqs.Instruments, ", "))
	}
	if reqs.Timeframe != "" {
		parts = append(parts, "on the "+reqs.Timeframe+" timeframe")
	}
	if len(reqs.Features) > 0 {
		parts = append(parts, "with features: "+strings.Join(reqs.Features, ", "))
	}
	return strings.Join(parts, " ")
}

func firstLine(text, fallback string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
