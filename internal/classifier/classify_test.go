package classifier_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/philokalos/promptlens/internal/classifier"
	"github.com/philokalos/promptlens/internal/types"
)

func TestClassify_EmptyPrompt(t *testing.T) {
	c := classifier.Classify("")
	assert.Equal(t, types.IntentUnknown, c.Intent)
	assert.Equal(t, types.CategoryUnknown, c.TaskCategory)
	assert.GreaterOrEqual(t, c.IntentConfidence, 0.2)
	assert.LessOrEqual(t, c.IntentConfidence, 0.4)
	assert.GreaterOrEqual(t, c.CategoryConfidence, 0.2)
	assert.LessOrEqual(t, c.CategoryConfidence, 0.4)
}

func TestClassify_BugFixCommand(t *testing.T) {
	c := classifier.Classify("fix bug")
	assert.Equal(t, types.IntentCommand, c.Intent)
	assert.Equal(t, types.CategoryBugFix, c.TaskCategory)
}

func TestClassify_KoreanBugFix(t *testing.T) {
	c := classifier.Classify("버그 수정해줘")
	assert.Equal(t, types.IntentCommand, c.Intent)
	assert.Equal(t, types.CategoryBugFix, c.TaskCategory)
}

func TestClassify_QuestionFallback(t *testing.T) {
	c := classifier.Classify("zzz qux plonk?")
	assert.Equal(t, types.IntentQuestion, c.Intent)
	assert.InDelta(t, 0.6, c.IntentConfidence, 1e-9)
}

func TestClassify_Deterministic(t *testing.T) {
	text := "리팩토링 해줘 and also write tests for it please"
	a := classifier.Classify(text)
	b := classifier.Classify(text)
	assert.Equal(t, a, b)
}

func TestClassify_MixedLanguageContributesBoth(t *testing.T) {
	c := classifier.Classify("버그 수정해줘 please fix this bug in my code")
	assert.Equal(t, types.CategoryBugFix, c.TaskCategory)
	assert.True(t, len(c.MatchedKeywords) >= 2)
}

func TestExtractFeatures_CodeBlockRaisesComplexityCeiling(t *testing.T) {
	text := "```go\nfunc main() {}\n```\n" + strings.Repeat("word ", 60)
	f := classifier.ExtractFeatures(text)
	assert.True(t, f.HasCodeBlock)
	assert.Equal(t, types.ComplexityModerate, f.Complexity)
}

func TestExtractFeatures_LanguageHint(t *testing.T) {
	assert.Equal(t, types.LanguageKorean, classifier.ExtractFeatures("이것은 순수한 한국어 문장입니다").LanguageHint)
	assert.Equal(t, types.LanguageEnglish, classifier.ExtractFeatures("this is pure english text").LanguageHint)
	assert.Equal(t, types.LanguageMixed, classifier.ExtractFeatures("이것은 mixed 한국어 and english text").LanguageHint)
}

func TestExtractCodeBlocks_StripsFenceAndLanguageTag(t *testing.T) {
	blocks := classifier.ExtractCodeBlocks("before\n```go\nfunc f() {}\n```\nafter")
	if assert.Len(t, blocks, 1) {
		assert.Equal(t, "func f() {}", blocks[0])
	}
}
