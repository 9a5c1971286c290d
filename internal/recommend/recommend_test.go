package recommend_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philokalos/promptlens/internal/recommend"
	"github.com/philokalos/promptlens/internal/store"
	"github.com/philokalos/promptlens/internal/types"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEnrichAnalysis_NoRepoStillReportsWeaknesses(t *testing.T) {
	score := types.GoldenScore{Goal: 0.1, Output: 0.9, Limits: 0.9, Data: 0.9, Evaluation: 0.9, Next: 0.9}
	score.Recompute()
	result := &types.AnalysisResult{Golden: score, Classification: types.Classification{TaskCategory: types.CategoryGeneral}}

	enrichment, err := recommend.EnrichAnalysis(context.Background(), nil, result, 60)
	require.NoError(t, err)
	require.NotEmpty(t, enrichment.Recommendations)
	assert.Equal(t, types.RecommendationWeakness, enrichment.Recommendations[0].Kind)
	assert.Nil(t, enrichment.Comparison)
}

func TestEnrichAnalysis_CapsAtFiveRecommendations(t *testing.T) {
	score := types.GoldenScore{Goal: 0.1, Output: 0.1, Limits: 0.1, Data: 0.1, Evaluation: 0.1, Next: 0.1}
	score.Recompute()
	result := &types.AnalysisResult{Golden: score, Classification: types.Classification{TaskCategory: types.CategoryGeneral}}

	enrichment, err := recommend.EnrichAnalysis(context.Background(), nil, result, 60)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(enrichment.Recommendations), 5)
}

func TestEnrichAnalysis_ComparesAgainstProjectAverage(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	low := types.GoldenScore{Goal: 0.3, Output: 0.3, Limits: 0.3, Data: 0.3, Evaluation: 0.3, Next: 0.3}
	low.Recompute()
	_, err := s.SaveAnalysis(context.Background(), &types.AnalysisResult{
		Prompt: types.Prompt{Text: "p1", ProjectPath: "/repo/a"}, Golden: low,
		Grade: types.GradeForScore(30), AnalyzedAt: now,
	}, 60)
	require.NoError(t, err)

	high := types.GoldenScore{Goal: 0.9, Output: 0.9, Limits: 0.9, Data: 0.9, Evaluation: 0.9, Next: 0.9}
	high.Recompute()
	result := &types.AnalysisResult{
		Prompt:         types.Prompt{Text: "p2", ProjectPath: "/repo/a"},
		Golden:         high,
		Classification: types.Classification{TaskCategory: types.CategoryGeneral},
	}

	enrichment, err := recommend.EnrichAnalysis(context.Background(), s, result, 60)
	require.NoError(t, err)
	require.NotNil(t, enrichment.Comparison)
	assert.True(t, enrichment.Comparison.BetterThanAverage)
}

func TestAnalyzeProjectPatterns_UsesHistoricalDimensionAverages(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	// Goal is persistently weak across history; every other dimension is
	// healthy. The project's weakness ranking must come from these
	// historical averages, not from any single in-flight analysis.
	weak := types.GoldenScore{Goal: 0.2, Output: 0.5, Limits: 0.5, Data: 0.5, Evaluation: 0.5, Next: 0.5}
	weak.Recompute()
	for i := 0; i < 3; i++ {
		_, err := s.SaveAnalysis(context.Background(), &types.AnalysisResult{
			Prompt: types.Prompt{Text: "p", ProjectPath: "/repo/b"}, Golden: weak,
			Grade: types.GradeForScore(weak.Total * 100), AnalyzedAt: now,
		}, 60)
		require.NoError(t, err)
	}

	analysis, err := recommend.AnalyzeProjectPatterns(context.Background(), s, "/repo/b")
	require.NoError(t, err)

	require.NotEmpty(t, analysis.Weaknesses)
	assert.Equal(t, types.DimensionGoal, analysis.Weaknesses[0].Dimension)
	assert.Equal(t, types.PriorityHigh, analysis.Weaknesses[0].Priority)

	require.NotNil(t, analysis.Pattern)
	assert.Equal(t, types.DimensionGoal, analysis.Pattern.Dimension)

	require.NotNil(t, analysis.Improvement)
	assert.Equal(t, types.PriorityHigh, analysis.Improvement.Priority)
}

func TestEnrichAnalysis_WeaknessRecommendationsComeFromProjectHistory(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	weak := types.GoldenScore{Goal: 0.2, Output: 0.5, Limits: 0.5, Data: 0.5, Evaluation: 0.5, Next: 0.5}
	weak.Recompute()
	_, err := s.SaveAnalysis(context.Background(), &types.AnalysisResult{
		Prompt: types.Prompt{Text: "p", ProjectPath: "/repo/c"}, Golden: weak,
		Grade: types.GradeForScore(weak.Total * 100), AnalyzedAt: now,
	}, 60)
	require.NoError(t, err)

	// The current analysis itself is strong everywhere; only the
	// project's history is weak in Goal. A current-analysis-only
	// weakness check would find nothing here.
	strong := types.GoldenScore{Goal: 0.95, Output: 0.95, Limits: 0.95, Data: 0.95, Evaluation: 0.95, Next: 0.95}
	strong.Recompute()
	result := &types.AnalysisResult{
		Prompt:         types.Prompt{Text: "p2", ProjectPath: "/repo/c"},
		Golden:         strong,
		Classification: types.Classification{TaskCategory: types.CategoryGeneral},
	}

	enrichment, err := recommend.EnrichAnalysis(context.Background(), s, result, 60)
	require.NoError(t, err)

	var sawGoalWeakness bool
	for _, r := range enrichment.Recommendations {
		if r.Kind == types.RecommendationWeakness && r.Dimension == types.DimensionGoal {
			sawGoalWeakness = true
		}
	}
	assert.True(t, sawGoalWeakness, "expected a project-history-derived Goal weakness recommendation")
}
