// Package orchestrator sequences a full prompt analysis: classify, evaluate
// (rule + optional LLM judge merge), rule-based rewrite, a parallel AI
// rewrite plus project-average lookup, persistence, and history-aware
// enrichment.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/philokalos/promptlens/internal/airewriter"
	"github.com/philokalos/promptlens/internal/classifier"
	"github.com/philokalos/promptlens/internal/config"
	"github.com/philokalos/promptlens/internal/golden"
	"github.com/philokalos/promptlens/internal/logging"
	"github.com/philokalos/promptlens/internal/recommend"
	"github.com/philokalos/promptlens/internal/rewriter"
	"github.com/philokalos/promptlens/internal/store"
	"github.com/philokalos/promptlens/internal/types"
)

// Pipeline runs a full analysis end to end. repo may be nil (history
// features disabled); aiRewriter may be nil or credential-less (AI variant
// degrades to needs_setup).
type Pipeline struct {
	cfg        *config.Config
	judge      *golden.Judge
	aiRewriter *airewriter.Rewriter
	repo       *store.Store
}

// New builds a Pipeline from its component dependencies.
func New(cfg *config.Config, judge *golden.Judge, aiRewriter *airewriter.Rewriter, repo *store.Store) *Pipeline {
	return &Pipeline{cfg: cfg, judge: judge, aiRewriter: aiRewriter, repo: repo}
}

// Analyze runs the full pipeline against one prompt. The overall deadline is enforced via the configured
// analysis timeout; components that miss it degrade gracefully rather than
// failing the whole analysis, and any degradation is surfaced in Warnings.
func (p *Pipeline) Analyze(ctx context.Context, prompt types.Prompt, sessionCtx *types.SessionContext) (*types.AnalysisResult, error) {
	timer := logging.StartTimer(logging.CategoryOrchestrator, "Analyze")
	defer timer.Stop()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}

	result := &types.AnalysisResult{
		ID:         uuid.NewString(),
		Prompt:     prompt,
		AnalyzedAt: time.Now(),
	}

	if err := validatePrompt(prompt.Text, p.cfg.MaxPromptLength); err != nil {
		result.Issues = []types.Issue{inputErrorIssue(err)}
		return result, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.AnalysisDeadline())
	defer cancel()

	result.Features = classifier.ExtractFeatures(prompt.Text)
	result.Classification = classifier.Classify(prompt.Text)
	logging.OrchestratorDebug("classified prompt %s: intent=%s category=%s", result.ID, result.Classification.Intent, result.Classification.TaskCategory)

	ruleScore := golden.EvaluateRule(prompt.Text, result.Features)
	merged, mergeMode, fellBack := p.judge.Merge(ctx, prompt.Text, ruleScore)
	result.Golden = merged
	if fellBack {
		result.Warnings = append(result.Warnings, "llm judge unavailable, used rule-based score only")
	}
	logging.OrchestratorDebug("golden score for %s: total=%.2f mode=%s", result.ID, result.Golden.Total, mergeMode)

	result.Grade = golden.GradeFor(result.Golden.Total, p.cfg.GradeBoundaries.A, p.cfg.GradeBoundaries.B, p.cfg.GradeBoundaries.C, p.cfg.GradeBoundaries.D)
	result.Issues = golden.IssuesForScore(result.Golden, p.cfg.WeaknessThreshold)

	ruleVariants := rewriter.GenerateVariantsWithThreshold(prompt.Text, result.Golden, sessionCtx, p.cfg.WeaknessThreshold)

	var aiVariant types.Variant
	var projectAverage *store.ProjectAverage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		aiVariant = p.aiRewriter.Generate(gctx, prompt.Text, result.Features, sessionCtx)
		return nil
	})
	g.Go(func() error {
		if p.repo == nil || prompt.ProjectPath == "" {
			return nil
		}
		averages, err := p.repo.ProjectAverages(gctx, p.cfg.WeaknessThresholdInt100())
		if err != nil {
			logging.OrchestratorWarn("project average lookup failed: %v", err)
			return nil
		}
		for _, avg := range averages {
			if avg.ProjectPath == prompt.ProjectPath {
				a := avg
				projectAverage = &a
				return nil
			}
		}
		return nil
	})
	_ = g.Wait()

	if ctx.Err() == context.Canceled {
		return nil, fmt.Errorf("%w", ErrCancelled)
	}

	result.Variants = append(ruleVariants, aiVariant)
	if aiVariant.NeedsSetup {
		result.Warnings = append(result.Warnings, "AI rewriter not configured; only rule-based variants available")
	}
	result.SessionContext = sessionCtx

	if ctx.Err() == context.DeadlineExceeded {
		logging.OrchestratorWarn("analysis %s hit its deadline; returning partial result", result.ID)
		return result, fmt.Errorf("%w", ErrDeadlineExceeded)
	}

	if p.repo != nil {
		id, err := p.repo.SaveAnalysis(ctx, result, p.cfg.WeaknessThresholdInt100())
		if err != nil {
			wrapped := fmt.Errorf("%w: %v", ErrStorage, err)
			logging.OrchestratorWarn("failed to persist analysis %s: %v", result.ID, wrapped)
			result.Warnings = append(result.Warnings, "analysis could not be saved to history")
		} else {
			result.Persisted = true
			logging.OrchestratorDebug("persisted analysis %s as history row %d", result.ID, id)
		}
	}

	enrichment, err := recommend.EnrichAnalysis(ctx, p.repo, result, p.cfg.WeaknessThresholdInt100())
	if err != nil {
		logging.OrchestratorWarn("enrichment failed for %s: %v", result.ID, err)
		result.Warnings = append(result.Warnings, "recommendations unavailable")
	} else {
		result.Enrichment = enrichment
		if projectAverage != nil && enrichment.Comparison == nil {
			diff := result.Golden.Total*100 - projectAverage.AvgScore
			result.Enrichment.Comparison = &types.Comparison{
				ScoreDiff:         diff,
				BetterThanAverage: diff > 0,
			}
		}
	}

	logging.Orchestrator("analysis %s complete: grade=%s persisted=%v", result.ID, result.Grade, result.Persisted)
	return result, nil
}

// validatePrompt rejects an empty (or whitespace-only) prompt or one
// beyond maxLen. maxLen <= 0 disables the length check.
func validatePrompt(text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyPrompt
	}
	if maxLen > 0 && len(text) > maxLen {
		return ErrPromptTooLarge
	}
	return nil
}

// inputErrorIssue renders a validation failure as the single high-severity
// Issue an otherwise-empty AnalysisResult carries for that failure.
func inputErrorIssue(err error) types.Issue {
	switch {
	case errors.Is(err, ErrEmptyPrompt):
		return types.Issue{
			Severity:   types.SeverityHigh,
			Category:   types.DimensionGoal,
			Message:    "프롬프트가 비어 있습니다.",
			Suggestion: "분석할 내용을 입력해주세요.",
		}
	case errors.Is(err, ErrPromptTooLarge):
		return types.Issue{
			Severity:   types.SeverityHigh,
			Category:   types.DimensionGoal,
			Message:    "프롬프트가 너무 깁니다.",
			Suggestion: "핵심 내용만 남기고 길이를 줄여주세요.",
		}
	default:
		return types.Issue{Severity: types.SeverityHigh, Message: err.Error()}
	}
}
