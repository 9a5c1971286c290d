package golden_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philokalos/promptlens/internal/classifier"
	"github.com/philokalos/promptlens/internal/config"
	"github.com/philokalos/promptlens/internal/golden"
	"github.com/philokalos/promptlens/internal/llm/llmtest"
	"github.com/philokalos/promptlens/internal/types"
)

func TestEvaluateRule_TotalIsMeanOfDimensions(t *testing.T) {
	text := "버그 수정해줘 JSON으로 출력하고 테스트도 통과해야 함. 그 다음 배포해줘."
	f := classifier.ExtractFeatures(text)
	score := golden.EvaluateRule(text, f)

	mean := (score.Goal + score.Output + score.Limits + score.Data + score.Evaluation + score.Next) / 6.0
	assert.InDelta(t, mean, score.Total, 1e-9)
}

func TestEvaluateRule_VagueBugFixScoresLow(t *testing.T) {
	f := classifier.ExtractFeatures("fix bug")
	score := golden.EvaluateRule("fix bug", f)
	assert.Less(t, score.Total, 0.35)
}

func TestIssuesForScore_EmitsBelowThreshold(t *testing.T) {
	score := types.GoldenScore{Goal: 0.1, Output: 0.9, Limits: 0.9, Data: 0.9, Evaluation: 0.9, Next: 0.9}
	score.Recompute()
	issues := golden.IssuesForScore(score, 0.5)
	require.Len(t, issues, 1)
	assert.Equal(t, types.DimensionGoal, issues[0].Category)
	assert.Equal(t, types.SeverityHigh, issues[0].Severity)
}

func TestGradeFor_Boundaries(t *testing.T) {
	assert.Equal(t, types.GradeA, golden.GradeFor(0.95, 0.9, 0.75, 0.6, 0.45))
	assert.Equal(t, types.GradeB, golden.GradeFor(0.80, 0.9, 0.75, 0.6, 0.45))
	assert.Equal(t, types.GradeF, golden.GradeFor(0.10, 0.9, 0.75, 0.6, 0.45))
}

func TestJudge_DisabledFallsBackToRule(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLMJudge.Enabled = false
	j := golden.NewJudge(&llmtest.Fake{}, cfg)

	rule := types.GoldenScore{Goal: 0.2, Output: 0.2, Limits: 0.2, Data: 0.2, Evaluation: 0.2, Next: 0.2}
	rule.Recompute()

	merged, mode, fellBack := j.Merge(context.Background(), "fix bug", rule)
	assert.Equal(t, rule, merged)
	assert.Equal(t, "rule-only", mode)
	assert.False(t, fellBack)
}

func TestJudge_MergeWeightsByDisagreement(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLMJudge.Enabled = true

	fake := &llmtest.Fake{Responses: map[float64]string{
		0.0: `{"goal":0.9,"output":0.9,"limits":0.9,"data":0.9,"evaluation":0.9,"next":0.9,"reasoning":"looks thorough"}`,
	}}
	j := golden.NewJudge(fake, cfg)

	rule := types.GoldenScore{Goal: 0.2, Output: 0.2, Limits: 0.2, Data: 0.2, Evaluation: 0.2, Next: 0.2}
	rule.Recompute()

	merged, mode, fellBack := j.Merge(context.Background(), "some prompt", rule)
	assert.Equal(t, "llm-heavy", mode)
	assert.False(t, fellBack)
	// llm-heavy weights: 0.3*rule + 0.7*llm
	assert.InDelta(t, 0.3*0.2+0.7*0.9, merged.Goal, 1e-9)
}

func TestJudge_FallsBackOnMalformedResponse(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLMJudge.Enabled = true
	fake := &llmtest.Fake{Responses: map[float64]string{0.0: "not json at all"}}
	j := golden.NewJudge(fake, cfg)

	rule := types.GoldenScore{Goal: 0.5, Output: 0.5, Limits: 0.5, Data: 0.5, Evaluation: 0.5, Next: 0.5}
	rule.Recompute()

	merged, mode, fellBack := j.Merge(context.Background(), "some prompt", rule)
	assert.Equal(t, rule, merged)
	assert.Equal(t, "rule-only", mode)
	assert.True(t, fellBack)
}

func TestJudge_FallsBackOnTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLMJudge.Enabled = true
	cfg.LLMJudge.TimeoutMs = 10
	fake := &llmtest.Fake{Delay: func(float64) { time.Sleep(50 * time.Millisecond) }}
	j := golden.NewJudge(fake, cfg)

	rule := types.GoldenScore{Goal: 0.5, Output: 0.5, Limits: 0.5, Data: 0.5, Evaluation: 0.5, Next: 0.5}
	rule.Recompute()

	_, mode, fellBack := j.Merge(context.Background(), "some prompt", rule)
	assert.Equal(t, "rule-only", mode)
	assert.True(t, fellBack)
}

func TestJudge_CacheNeverExceedsCapacity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLMJudge.Enabled = true
	fake := &llmtest.Fake{Responses: map[float64]string{
		0.0: `{"goal":0.5,"output":0.5,"limits":0.5,"data":0.5,"evaluation":0.5,"next":0.5,"reasoning":"ok"}`,
	}}
	j := golden.NewJudge(fake, cfg)

	rule := types.GoldenScore{Goal: 0.5, Output: 0.5, Limits: 0.5, Data: 0.5, Evaluation: 0.5, Next: 0.5}
	rule.Recompute()

	for i := 0; i < 150; i++ {
		text := fmt.Sprintf("distinct prompt number %d", i)
		_, _, _ = j.Merge(context.Background(), text, rule)
	}
	assert.LessOrEqual(t, j.CacheSize(), 100)
}
