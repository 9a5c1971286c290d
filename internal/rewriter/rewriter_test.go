package rewriter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philokalos/promptlens/internal/rewriter"
	"github.com/philokalos/promptlens/internal/types"
)

func TestPreprocess_StripsGreetingAndFillerFromFirstSegmentOnly(t *testing.T) {
	text := "안녕하세요, 그래서 버그를 고쳐줘"
	got := rewriter.Preprocess(text)
	assert.Equal(t, "버그를 고쳐줘", got)
}

func TestPreprocess_LeavesCodeFencesUntouched(t *testing.T) {
	text := "hi   please fix this\n```go\nfunc   f ( ) { }\n```\nthanks"
	got := rewriter.Preprocess(text)
	assert.Contains(t, got, "func   f ( ) { }")
}

func TestPreprocess_CollapsesWhitespaceAndBlankLines(t *testing.T) {
	text := "please    fix this\n\n\n\nok"
	got := rewriter.Preprocess(text)
	assert.Equal(t, "please fix this\n\nok", got)
}

func TestDetectCategory_MatchesIndependentlyOfClassifier(t *testing.T) {
	assert.Equal(t, types.CategoryBugFix, rewriter.DetectCategory("이 에러를 고쳐줘"))
	assert.Equal(t, types.CategoryTesting, rewriter.DetectCategory("write a unit test for this"))
	assert.Equal(t, types.CategoryGeneral, rewriter.DetectCategory("zzz qux plonk"))
}

func TestExtractCodeReferences_ReturnsFencedBlocks(t *testing.T) {
	text := "fix this\n```go\nfunc f() {}\n```"
	refs := rewriter.ExtractCodeReferences(text)
	require.Len(t, refs, 1)
	assert.Equal(t, "func f() {}", refs[0])
}

func TestExtractErrorReferences_DedupesRepeatedLines(t *testing.T) {
	text := "TypeError: x is not a function\nTypeError: x is not a function\n    at foo (file.js:1:1)"
	refs := rewriter.ExtractErrorReferences(text)
	require.Len(t, refs, 2)
	assert.Contains(t, refs[0], "TypeError")
	assert.Contains(t, refs[1], "at foo")
}

func scoreWith(weak types.Dimension, weakVal float64) types.GoldenScore {
	s := types.GoldenScore{Goal: 0.9, Output: 0.9, Limits: 0.9, Data: 0.9, Evaluation: 0.9, Next: 0.9}
	switch weak {
	case types.DimensionGoal:
		s.Goal = weakVal
	case types.DimensionOutput:
		s.Output = weakVal
	case types.DimensionLimits:
		s.Limits = weakVal
	case types.DimensionData:
		s.Data = weakVal
	case types.DimensionEvaluation:
		s.Evaluation = weakVal
	case types.DimensionNext:
		s.Next = weakVal
	}
	s.Recompute()
	return s
}

func TestGenerateVariants_ReturnsThreeInFixedOrder(t *testing.T) {
	score := scoreWith(types.DimensionGoal, 0.1)
	variants := rewriter.GenerateVariants("fix bug", score, nil)
	require.Len(t, variants, 3)
	assert.Equal(t, types.VariantConservative, variants[0].Kind)
	assert.Equal(t, types.VariantBalanced, variants[1].Kind)
	assert.Equal(t, types.VariantComprehensive, variants[2].Kind)
}

func TestGenerateVariants_ConservativeNoOpWhenAlreadyGood(t *testing.T) {
	score := types.GoldenScore{Goal: 0.9, Output: 0.9, Limits: 0.9, Data: 0.9, Evaluation: 0.9, Next: 0.9}
	score.Recompute()
	variants := rewriter.GenerateVariants("이미 잘 작성된 요청입니다", score, nil)
	assert.Equal(t, []string{"[이미 잘 작성됨]"}, variants[0].KeyChanges)
	assert.InDelta(t, 0.6, variants[0].Confidence, 1e-9)
}

func TestGenerateVariants_BalancedUsesSessionContext(t *testing.T) {
	score := scoreWith(types.DimensionGoal, 0.1)
	ctx := &types.SessionContext{ProjectName: "promptlens", TechStack: []string{"Go"}, GitBranch: "main"}

	withCtx := rewriter.GenerateVariants("fix bug", score, ctx)
	withoutCtx := rewriter.GenerateVariants("fix bug", score, nil)

	assert.Contains(t, withCtx[1].Text, "현재 상황")
	assert.Greater(t, withCtx[1].Confidence, withoutCtx[1].Confidence)
}

func TestGenerateVariants_ComprehensiveIncludesAllSections(t *testing.T) {
	score := scoreWith(types.DimensionData, 0.1)
	text := "버그를 고쳐줘\n```go\nfunc f() {}\n```\nTypeError: x is not a function"
	variants := rewriter.GenerateVariants(text, score, nil)
	comp := variants[2].Text

	assert.True(t, strings.Contains(comp, "요청:"))
	assert.True(t, strings.Contains(comp, "출력:"))
	assert.True(t, strings.Contains(comp, "참조 코드:"))
	assert.True(t, strings.Contains(comp, "참조 에러:"))
	assert.True(t, strings.Contains(comp, "완료 조건:"))
}

func TestGenerateVariants_ComprehensiveAppliesTechStackConstraints(t *testing.T) {
	score := scoreWith(types.DimensionLimits, 0.1)
	ctx := &types.SessionContext{TechStack: []string{"TypeScript", "React"}}
	variants := rewriter.GenerateVariants("컴포넌트를 수정해줘", score, ctx)
	assert.Contains(t, variants[2].Text, "타입 안정성")
	assert.Contains(t, variants[2].Text, "컴포넌트 구조")
}
