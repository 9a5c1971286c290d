package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/philokalos/promptlens/internal/store"
	"github.com/philokalos/promptlens/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult(projectPath string, total float64, category types.TaskCategory, when time.Time) *types.AnalysisResult {
	score := types.GoldenScore{Goal: total, Output: total, Limits: total, Data: total, Evaluation: total, Next: total}
	score.Recompute()
	return &types.AnalysisResult{
		Prompt:         types.Prompt{Text: "some prompt", ProjectPath: projectPath},
		Golden:         score,
		Grade:          types.GradeForScore(total * 100),
		Classification: types.Classification{Intent: types.IntentCommand, TaskCategory: category},
		Variants: []types.Variant{
			{Kind: types.VariantConservative, Text: "improved prompt", Confidence: 0.6},
		},
		AnalyzedAt: when,
	}
}

func TestOpen_CreatesSchemaAndRecordsVersion(t *testing.T) {
	s := openTestStore(t)
	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.CurrentSchemaVersion, v)
}

func TestSaveAnalysis_PersistsAndReturnsID(t *testing.T) {
	s := openTestStore(t)
	result := sampleResult("/repo/a", 0.8, types.CategoryBugFix, time.Now())

	id, err := s.SaveAnalysis(context.Background(), result, 60)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	recent, err := s.RecentRecords(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "some prompt", recent[0].PromptText)
	assert.Equal(t, 80, recent[0].OverallScore)
	assert.Equal(t, "improved prompt", recent[0].ImprovedPrompt)
}

func TestSaveAnalysis_ProjectAveragesCountWeakAnalyses(t *testing.T) {
	s := openTestStore(t)
	weak := sampleResult("/repo/a", 0.2, types.CategoryBugFix, time.Now())

	_, err := s.SaveAnalysis(context.Background(), weak, 60)
	require.NoError(t, err)
	_, err = s.SaveAnalysis(context.Background(), weak, 60)
	require.NoError(t, err)

	averages, err := s.ProjectAverages(context.Background(), 60)
	require.NoError(t, err)
	require.Len(t, averages, 1)
	assert.Equal(t, 2, averages[0].WeaknessCount)
}

func TestPersonalTips_AggregatesGloballyAcrossProjects(t *testing.T) {
	s := openTestStore(t)
	weakA := sampleResult("/repo/a", 0.2, types.CategoryBugFix, time.Now())
	weakB := sampleResult("/repo/b", 0.2, types.CategoryGeneral, time.Now())

	_, err := s.SaveAnalysis(context.Background(), weakA, 60)
	require.NoError(t, err)
	_, err = s.SaveAnalysis(context.Background(), weakB, 60)
	require.NoError(t, err)

	tips, err := s.PersonalTips(context.Background())
	require.NoError(t, err)
	require.Len(t, tips, len(types.AllDimensions))
	for _, tip := range tips {
		assert.Equal(t, 2, tip.Frequency)
		assert.NotEmpty(t, tip.TipText)
	}
}

func TestRecentRecords_OrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-time.Hour)

	_, err := s.SaveAnalysis(context.Background(), sampleResult("/repo/a", 0.5, types.CategoryGeneral, base), 60)
	require.NoError(t, err)
	_, err = s.SaveAnalysis(context.Background(), sampleResult("/repo/a", 0.6, types.CategoryGeneral, base.Add(time.Minute)), 60)
	require.NoError(t, err)

	recent, err := s.RecentRecords(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 60, recent[0].OverallScore)
}

func TestHighScoringExamples_FiltersByCategoryAndThreshold(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	_, err := s.SaveAnalysis(context.Background(), sampleResult("/repo/a", 0.9, types.CategoryTesting, now), 60)
	require.NoError(t, err)
	_, err = s.SaveAnalysis(context.Background(), sampleResult("/repo/a", 0.5, types.CategoryTesting, now), 60)
	require.NoError(t, err)

	examples, err := s.HighScoringExamples(context.Background(), "testing", 5)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, 90, examples[0].OverallScore)
}

func TestImprovementAnalysis_DetectsStreak(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-time.Hour)
	scores := []float64{0.4, 0.5, 0.6, 0.7}
	for i, sc := range scores {
		_, err := s.SaveAnalysis(context.Background(), sampleResult("/repo/a", sc, types.CategoryGeneral, base.Add(time.Duration(i)*time.Minute)), 60)
		require.NoError(t, err)
	}

	result, err := s.ImprovementAnalysis(context.Background(), "/repo/a")
	require.NoError(t, err)
	assert.Equal(t, 4, result.CurrentStreak)
	assert.Equal(t, 4, result.LongestStreak)
	assert.Greater(t, result.OverallDelta, 0.0)
}

func TestPredictedScore_LowConfidenceWithFewSamples(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SaveAnalysis(context.Background(), sampleResult("/repo/a", 0.5, types.CategoryGeneral, time.Now()), 60)
	require.NoError(t, err)

	pred, err := s.PredictedScore(context.Background(), "/repo/a")
	require.NoError(t, err)
	assert.Equal(t, "low", pred.Confidence)
	assert.Equal(t, 1, pred.SampleSize)
}

func TestDimensionAverages_ComputesMeanAcrossHistory(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	_, err := s.SaveAnalysis(context.Background(), sampleResult("/repo/a", 0.4, types.CategoryGeneral, now), 60)
	require.NoError(t, err)
	_, err = s.SaveAnalysis(context.Background(), sampleResult("/repo/a", 0.6, types.CategoryGeneral, now), 60)
	require.NoError(t, err)

	avg, err := s.DimensionAverages(context.Background(), "/repo/a")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, avg.Goal, 0.01)
	assert.InDelta(t, 0.5, avg.Total, 0.01)
}
