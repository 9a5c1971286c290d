// Package recommend builds the history-aware Enrichment attached to an
// analysis: project-average comparison plus up to five prioritized
// recommendations drawn from the project's historical weaknesses, its
// recurring patterns, high-scoring reference examples, and its overall
// improvement target.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/philokalos/promptlens/internal/logging"
	"github.com/philokalos/promptlens/internal/store"
	"github.com/philokalos/promptlens/internal/types"
)

const (
	maxRecommendations  = 5
	patternThreshold    = 70.0
	improvementHighCap  = 60.0
	improvementMediumCap = 75.0
	exampleMaxLen       = 150
)

var categoryLabels = map[types.TaskCategory]string{
	types.CategoryCodeGeneration: "코드 생성",
	types.CategoryCodeReview:     "코드 리뷰",
	types.CategoryBugFix:         "버그 수정",
	types.CategoryRefactoring:    "리팩토링",
	types.CategoryExplanation:    "설명",
	types.CategoryDocumentation:  "문서화",
	types.CategoryTesting:        "테스트",
	types.CategoryArchitecture:   "아키텍처",
	types.CategoryDeployment:     "배포",
	types.CategoryDataAnalysis:   "데이터 분석",
	types.CategoryGeneral:        "일반",
	types.CategoryUnknown:        "일반",
}

// CategoryLabel renders a category as the Korean label used in
// recommendation messages.
func CategoryLabel(c types.TaskCategory) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

var dimensionLabels = map[types.Dimension]string{
	types.DimensionGoal:       "목표(Goal)",
	types.DimensionOutput:     "출력(Output)",
	types.DimensionLimits:     "제약(Limits)",
	types.DimensionData:       "데이터(Data)",
	types.DimensionEvaluation: "평가 기준(Evaluation)",
	types.DimensionNext:       "다음 단계(Next)",
}

var labelToDimension = reverseDimensionLabels(dimensionLabels)

func reverseDimensionLabels(m map[types.Dimension]string) map[string]types.Dimension {
	out := make(map[string]types.Dimension, len(m))
	for dim, label := range m {
		out[label] = dim
	}
	return out
}

// dimensionFromLabel reverses dimensionLabels; ok is false for a label that
// doesn't match any known dimension, which callers skip rather than error
// on (labels may have been produced by an older build).
func dimensionFromLabel(label string) (types.Dimension, bool) {
	dim, ok := labelToDimension[label]
	return dim, ok
}

// ProjectPatternAnalysis is a standalone report over a project's full
// history, independent of any single in-flight analysis.
type ProjectPatternAnalysis struct {
	ProjectPath       string
	DimensionAverages types.GoldenScore
	Weaknesses        []types.Recommendation
	Pattern           *types.Recommendation
	Improvement       *types.Recommendation
}

// AnalyzeProjectPatterns builds a ProjectPatternAnalysis from a project's
// full analyzed history: its top 2 weakest dimensions, whether one
// dimension sits persistently low enough to flag as a pattern, and whether
// its overall average warrants an improvement target.
func AnalyzeProjectPatterns(ctx context.Context, repo *store.Store, projectPath string) (ProjectPatternAnalysis, error) {
	timer := logging.StartTimer(logging.CategoryRecommend, "AnalyzeProjectPatterns")
	defer timer.Stop()

	averages, err := repo.DimensionAverages(ctx, projectPath)
	if err != nil {
		return ProjectPatternAnalysis{}, fmt.Errorf("dimension averages: %w", err)
	}

	return ProjectPatternAnalysis{
		ProjectPath:       projectPath,
		DimensionAverages: averages,
		Weaknesses:        topWeaknesses(averages, 2),
		Pattern:           patternRecommendation(averages),
		Improvement:       improvementRecommendation(averages.Total * 100),
	}, nil
}

// EnrichAnalysis attaches a history-aware Enrichment to result: a
// project-average comparison plus up to five recommendations. repo may be
// nil (no history available yet), in which case only threshold-based
// weakness recommendations against the current analysis are produced.
func EnrichAnalysis(ctx context.Context, repo *store.Store, result *types.AnalysisResult, weaknessThreshold100 int) (*types.Enrichment, error) {
	timer := logging.StartTimer(logging.CategoryRecommend, "EnrichAnalysis")
	defer timer.Stop()

	var recs []types.Recommendation
	var comparison *types.Comparison

	projectPath := result.Prompt.ProjectPath
	if repo != nil && projectPath != "" {
		pattern, err := AnalyzeProjectPatterns(ctx, repo, projectPath)
		if err != nil {
			logging.RecommendDebug("project pattern analysis unavailable: %v", err)
			recs = append(recs, weaknessRecommendations(result.Golden, weaknessThreshold100)...)
		} else {
			recs = append(recs, pattern.Weaknesses...)
			if pattern.Pattern != nil {
				recs = append(recs, *pattern.Pattern)
			}
			if pattern.Improvement != nil {
				recs = append(recs, *pattern.Improvement)
			}
		}

		comparison, err = compareToProjectAverage(ctx, repo, projectPath, result.Golden.Total*100, weaknessThreshold100)
		if err != nil {
			logging.RecommendDebug("project comparison unavailable: %v", err)
		}
	} else {
		recs = append(recs, weaknessRecommendations(result.Golden, weaknessThreshold100)...)
	}

	if repo != nil {
		refRecs, err := referenceRecommendations(ctx, repo, result.Classification.TaskCategory)
		if err != nil {
			logging.RecommendDebug("reference recommendations unavailable: %v", err)
		} else {
			recs = append(recs, refRecs...)
		}
	}

	recs = rankAndCap(recs, maxRecommendations)
	return &types.Enrichment{Recommendations: recs, Comparison: comparison}, nil
}

// weaknessRecommendations flags every GOLDEN dimension below the weakness
// threshold in a single analysis. Used only when no project history is
// available yet to rank historical weaknesses instead.
func weaknessRecommendations(score types.GoldenScore, threshold100 int) []types.Recommendation {
	var out []types.Recommendation
	for _, dim := range types.AllDimensions {
		val100 := score.Get(dim) * 100
		if int(val100) >= threshold100 {
			continue
		}
		gap := float64(threshold100) - val100
		out = append(out, types.Recommendation{
			Kind:      types.RecommendationWeakness,
			Priority:  priorityForGap(gap),
			Title:     dimensionLabels[dim] + " 보강 필요",
			Message:   fmt.Sprintf("%s 점수가 낮습니다 (%.0f점).", dimensionLabels[dim], val100),
			Dimension: dim,
			Score:     val100,
			Gap:       gap,
		})
	}
	return out
}

func priorityForGap(gap float64) types.Priority {
	switch {
	case gap >= 30:
		return types.PriorityHigh
	case gap >= 15:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

// topWeaknesses ranks a project's six dimension averages ascending and
// returns the n weakest as recommendations, priority high then medium
// then low. Each ranked dimension is round-tripped through its Korean
// label and back; an unrecognized label is skipped silently.
func topWeaknesses(score types.GoldenScore, n int) []types.Recommendation {
	type entry struct {
		label string
		val   float64
	}
	entries := make([]entry, 0, len(types.AllDimensions))
	for _, d := range types.AllDimensions {
		entries = append(entries, entry{label: dimensionLabels[d], val: score.Get(d) * 100})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].val < entries[j].val })

	priorities := []types.Priority{types.PriorityHigh, types.PriorityMedium}
	var out []types.Recommendation
	for i, e := range entries {
		if len(out) >= n {
			break
		}
		dim, ok := dimensionFromLabel(e.label)
		if !ok {
			continue
		}
		priority := types.PriorityLow
		if i < len(priorities) {
			priority = priorities[i]
		}
		out = append(out, types.Recommendation{
			Kind:      types.RecommendationWeakness,
			Priority:  priority,
			Title:     e.label + " 보강 필요",
			Message:   fmt.Sprintf("%s 평균 점수가 낮습니다 (%.0f점).", e.label, e.val),
			Dimension: dim,
			Score:     e.val,
			Gap:       100 - e.val,
		})
	}
	return out
}

// patternRecommendation flags the single lowest-averaging dimension when
// it sits at or below patternThreshold; nil otherwise.
func patternRecommendation(score types.GoldenScore) *types.Recommendation {
	minDim, minVal := types.DimensionGoal, score.Goal
	for _, d := range types.AllDimensions {
		if v := score.Get(d); v < minVal {
			minDim, minVal = d, v
		}
	}
	val100 := minVal * 100
	if val100 > patternThreshold {
		return nil
	}
	return &types.Recommendation{
		Kind:      types.RecommendationPattern,
		Priority:  types.PriorityMedium,
		Title:     dimensionLabels[minDim] + " 집중 필요",
		Message:   fmt.Sprintf("%s 평균 점수가 %.0f점으로 낮습니다. 이 부분에 집중해보세요.", dimensionLabels[minDim], val100),
		Dimension: minDim,
		Score:     val100,
	}
}

// improvementRecommendation targets a project's overall average score: a
// low average gets a high-priority push toward 60, a middling one a
// medium-priority push toward 75, and a healthy one nothing.
func improvementRecommendation(avg100 float64) *types.Recommendation {
	switch {
	case avg100 < improvementHighCap:
		return &types.Recommendation{
			Kind:     types.RecommendationImprovement,
			Priority: types.PriorityHigh,
			Title:    "전반적인 개선이 필요합니다",
			Message:  fmt.Sprintf("평균 점수가 %.0f점입니다. 먼저 %.0f점을 목표로 GOLDEN 체크리스트를 다시 살펴보세요.", avg100, improvementHighCap),
			Score:    avg100,
			Gap:      improvementHighCap - avg100,
		}
	case avg100 < improvementMediumCap:
		return &types.Recommendation{
			Kind:     types.RecommendationImprovement,
			Priority: types.PriorityMedium,
			Title:    "조금 더 다듬으면 좋습니다",
			Message:  fmt.Sprintf("평균 점수가 %.0f점입니다. %.0f점을 목표로 약점을 보완해보세요.", avg100, improvementMediumCap),
			Score:    avg100,
			Gap:      improvementMediumCap - avg100,
		}
	default:
		return nil
	}
}

// referenceRecommendations surfaces the best-scoring stored prompt in the
// same category, as a concrete example to imitate. The lookup spans every
// project's history; it is not restricted to the current project.
func referenceRecommendations(ctx context.Context, repo *store.Store, category types.TaskCategory) ([]types.Recommendation, error) {
	examples, err := repo.HighScoringExamples(ctx, string(category), 1)
	if err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, nil
	}
	example := examples[0]
	return []types.Recommendation{{
		Kind:          types.RecommendationReference,
		Priority:      types.PriorityLow,
		Title:         CategoryLabel(category) + " 우수 사례",
		Message:       "이전에 높은 점수를 받은 비슷한 요청을 참고해보세요.",
		ExamplePrompt: truncateExample(example.PromptText),
		Score:         float64(example.OverallScore),
	}}, nil
}

// truncateExample caps an example prompt at exampleMaxLen runes, appending
// an ellipsis when it was cut.
func truncateExample(text string) string {
	runes := []rune(text)
	if len(runes) <= exampleMaxLen {
		return text
	}
	return strings.TrimSpace(string(runes[:exampleMaxLen])) + "..."
}

// compareToProjectAverage contrasts score100 against the project's
// historical average.
func compareToProjectAverage(ctx context.Context, repo *store.Store, projectPath string, score100 float64, weaknessThreshold100 int) (*types.Comparison, error) {
	averages, err := repo.ProjectAverages(ctx, weaknessThreshold100)
	if err != nil {
		return nil, err
	}
	for _, avg := range averages {
		if avg.ProjectPath != projectPath {
			continue
		}
		diff := score100 - avg.AvgScore
		return &types.Comparison{
			ScoreDiff:         diff,
			BetterThanAverage: diff > 0,
			Message:           comparisonMessage(diff),
		}, nil
	}
	return nil, nil
}

func comparisonMessage(diff float64) string {
	switch {
	case diff >= 10:
		return "크게 개선되었습니다."
	case diff >= 5:
		return "개선되었습니다."
	case diff <= -10:
		return "품질이 낮습니다."
	default:
		return ""
	}
}

// rankAndCap sorts by priority (stable) and caps at n.
func rankAndCap(recs []types.Recommendation, n int) []types.Recommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		return types.PriorityRank(recs[i].Priority) < types.PriorityRank(recs[j].Priority)
	})
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs
}
