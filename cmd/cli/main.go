package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"finhypo/adapters/llm"
	"finhypo/ai"
	"finhypo/app"
	"finhypo/domain/core"
	"finhypo/internal/config"
	hypparser "finhypo/internal/hypothesis"
	"finhypo/internal/knowledge"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "finhypo",
		Short: "Knowledge-augmented analysis of trading hypotheses",
	}

	rootCmd.AddCommand(
		newLookupCmd(),
		newDefineCmd(),
		newRelatedCmd(),
		newRetrieveCmd(),
		newShowCmd(),
		newPromoteCmd(),
		newTestCmd(),
		newExplainCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore() *knowledge.Store {
	cfg := config.LoadOffline()
	return knowledge.NewStore(cfg.Knowledge.BaseDir)
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup [term]",
		Short: "Look up a glossary term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			definition, ok := store.Lookup(args[0])
			if !ok {
				return fmt.Errorf("term %q not found", args[0])
			}
			fmt.Printf("%s: %s\n", args[0], definition)
			return nil
		},
	}
}

func newDefineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "define [term] [definition]",
		Short: "Add or replace a glossary term and persist the glossary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			if err := store.Add(args[0], args[1]); err != nil {
				// Memory is updated even when the write fails
				return fmt.Errorf("definition stored in memory but not persisted: %w", err)
			}
			fmt.Printf("Defined %q\n", args[0])
			return nil
		},
	}
}

func newRelatedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "related [term]",
		Short: "List glossary terms related to a term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			for _, term := range store.ListRelated(args[0]) {
				fmt.Println(term)
			}
			return nil
		},
	}
}

func newRetrieveCmd() *cobra.Command {
	var limit int
	var quick bool

	cmd := &cobra.Command{
		Use:   "retrieve [query]",
		Short: "Rank knowledge chunks against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			retriever := knowledge.NewRetriever(store)

			query := joinArgs(args)
			chunks := retriever.Retrieve(query, limit)
			if quick {
				chunks = retriever.QuickRetrieve(query)
			}
			for _, chunk := range chunks {
				fmt.Printf("[%.2f] %s (%s)\n    %s\n", chunk.Score, chunk.Title, chunk.Type, chunk.Content)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum chunks to return (default 5)")
	cmd.Flags().BoolVar(&quick, "quick", false, "Use the lighter unscored retrieval mode")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [hypothesis-name]",
		Short: "Parse a hypothesis document into its typed record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			parser := hypparser.NewParser(store)

			record, err := parser.ParseNamed(joinArgs(args))
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
}

func newPromoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote [hypothesis-name]",
		Short: "Move a hypothesis from active to tested",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			name := joinArgs(args)
			if err := store.PromoteHypothesis(name); err != nil {
				return err
			}
			fmt.Printf("Promoted %q to tested\n", name)
			return nil
		},
	}
}

func newTestCmd() *cobra.Command {
	var dataFile string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "test [hypothesis-name]",
		Short: "Run the clarify/analyze workflow for a hypothesis",
		Long: `Run one hypothesis test. Without --data the model is asked to clarify
which market data the test needs; with --data the hypothesis is analyzed
and a structured verdict is extracted.

Example: finhypo test "liquidity sweep reversal" --data returns.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := core.ParseHypothesisName(joinArgs(args))
			if err != nil {
				return err
			}

			var data map[string]any
			if dataFile != "" {
				raw, err := os.ReadFile(dataFile)
				if err != nil {
					return fmt.Errorf("failed to read data file: %w", err)
				}
				if err := json.Unmarshal(raw, &data); err != nil {
					return fmt.Errorf("data file is not a JSON object: %w", err)
				}
			}

			service, err := buildService()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			result := service.TestHypothesis(ctx, name.String(), data)
			if result == nil {
				return fmt.Errorf("analysis produced no result; see log output")
			}
			encoded, err := result.Marshal()
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "JSON file with structured test data")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "Model call timeout")
	return cmd
}

func newExplainCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "explain [question]",
		Short: "Answer a question using retrieved domain knowledge",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			answer, err := service.Explain(ctx, joinArgs(args))
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Model call timeout")
	return cmd
}

func buildService() (*app.AnalysisService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	client, err := llm.NewOpenAIClient(llm.Config{APIKey: cfg.AI.OpenAIKey})
	if err != nil {
		return nil, err
	}

	store := knowledge.NewStore(cfg.Knowledge.BaseDir)
	retriever := knowledge.NewRetriever(store)
	parser := hypparser.NewParser(store)
	prompts := ai.NewPromptManager(cfg.AI.PromptsDir)

	return app.NewAnalysisService(retriever, parser, prompts, client, cfg.AI), nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
