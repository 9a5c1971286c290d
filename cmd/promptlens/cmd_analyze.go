package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philokalos/promptlens/internal/airewriter"
	"github.com/philokalos/promptlens/internal/golden"
	"github.com/philokalos/promptlens/internal/llm"
	"github.com/philokalos/promptlens/internal/logging"
	"github.com/philokalos/promptlens/internal/orchestrator"
	"github.com/philokalos/promptlens/internal/store"
	"github.com/philokalos/promptlens/internal/types"
)

var (
	analyzeSourceApp   string
	analyzeProjectPath string
	analyzeNoHistory   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <prompt text>",
	Short: "Score a prompt against the GOLDEN checklist and suggest rewrites",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSourceApp, "source-app", "", "Name of the app the prompt was captured from")
	analyzeCmd.Flags().StringVar(&analyzeProjectPath, "project", "", "Project path this prompt belongs to (enables history comparisons)")
	analyzeCmd.Flags().BoolVar(&analyzeNoHistory, "no-history", false, "Skip opening the history database for this run")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var repo *store.Store
	if !analyzeNoHistory {
		s, err := store.Open(appConfig.History.DatabasePath)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: history database unavailable: %v\n", err)
		} else {
			repo = s
			defer repo.Close()
		}
	}

	var provider llm.Provider
	if appConfig.HasLLMCredential() {
		p, err := llm.NewGenAIProvider(ctx, appConfig.LLM.APIKey, appConfig.LLM.Model)
		if err != nil {
			logging.Orchestrator("llm provider unavailable, continuing rule-based only: %v", err)
		} else {
			provider = p
		}
	}

	judge := golden.NewJudge(provider, appConfig)
	rewriter := airewriter.NewRewriter(provider, appConfig)
	pipeline := orchestrator.New(appConfig, judge, rewriter, repo)

	prompt := types.Prompt{
		Text:        args[0],
		SourceApp:   analyzeSourceApp,
		ProjectPath: analyzeProjectPath,
	}

	result, err := pipeline.Analyze(ctx, prompt, nil)
	if err != nil {
		// Input validation and deadline-exceeded failures still carry a
		// (partial) result worth showing; anything else is fatal.
		if result != nil && (errors.Is(err, orchestrator.ErrEmptyPrompt) ||
			errors.Is(err, orchestrator.ErrPromptTooLarge) ||
			errors.Is(err, orchestrator.ErrDeadlineExceeded)) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			printAnalysisResult(cmd, result)
			return nil
		}
		return fmt.Errorf("analyze: %w", err)
	}

	printAnalysisResult(cmd, result)
	return nil
}

func printAnalysisResult(cmd *cobra.Command, result *types.AnalysisResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "GOLDEN score: %.0f/100 (%s)\n", result.Golden.Total*100, result.Grade)
	fmt.Fprintln(out, strings.Repeat("-", 50))
	for _, dim := range types.AllDimensions {
		fmt.Fprintf(out, "  %-12s %.0f\n", dim, result.Golden.Get(dim)*100)
	}
	fmt.Fprintln(out, strings.Repeat("-", 50))

	if len(result.Issues) > 0 {
		fmt.Fprintln(out, "Issues:")
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "  [%s] %s: %s\n", issue.Severity, issue.Category, issue.Message)
			if issue.Suggestion != "" {
				fmt.Fprintf(out, "    -> %s\n", issue.Suggestion)
			}
		}
	}

	fmt.Fprintln(out, "\nRewrite suggestions:")
	for _, v := range result.Variants {
		if v.NeedsSetup {
			fmt.Fprintf(out, "  [%s] not available (configure GEMINI_API_KEY to enable)\n", v.Kind)
			continue
		}
		fmt.Fprintf(out, "  [%s] (confidence %.0f%%)\n", v.Kind, v.Confidence*100)
		fmt.Fprintf(out, "    %s\n", strings.ReplaceAll(v.Text, "\n", "\n    "))
	}

	if result.Enrichment != nil {
		if c := result.Enrichment.Comparison; c != nil {
			fmt.Fprintf(out, "\n%s\n", c.Message)
		}
		if len(result.Enrichment.Recommendations) > 0 {
			fmt.Fprintln(out, "\nRecommendations:")
			for _, r := range result.Enrichment.Recommendations {
				fmt.Fprintf(out, "  [%s] %s - %s\n", r.Priority, r.Title, r.Message)
			}
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	if result.Persisted {
		fmt.Fprintln(out, "\nSaved to history.")
	}
}
