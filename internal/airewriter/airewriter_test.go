package airewriter_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philokalos/promptlens/internal/airewriter"
	"github.com/philokalos/promptlens/internal/classifier"
	"github.com/philokalos/promptlens/internal/config"
	"github.com/philokalos/promptlens/internal/llm/llmtest"
	"github.com/philokalos/promptlens/internal/types"
)

func TestGenerate_NoCredentialReturnsNeedsSetup(t *testing.T) {
	cfg := config.DefaultConfig()
	r := airewriter.NewRewriter(&llmtest.Fake{}, cfg)

	v := r.Generate(context.Background(), "fix bug", classifier.ExtractFeatures("fix bug"), nil)
	assert.True(t, v.NeedsSetup)
	assert.Equal(t, types.VariantAI, v.Kind)
}

func TestGenerate_PicksHighestScoringBranch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"

	fake := &llmtest.Fake{Responses: map[float64]string{
		0.3: "fix bug",
		0.5: "버그를 고쳐줘. 출력은 JSON으로. 제약: 기존 테스트를 깨지 않을 것. 완료 기준: 테스트 통과.",
		0.7: "fix",
	}}
	r := airewriter.NewRewriter(fake, cfg)

	v := r.Generate(context.Background(), "fix bug", classifier.ExtractFeatures("fix bug"), nil)
	require.False(t, v.NeedsSetup)
	assert.InDelta(t, 0.5, v.OriginTemperature, 1e-9)
	assert.NotEmpty(t, v.AIExplanation)
	assert.InDelta(t, 0.9-0.2*0.5, v.Confidence, 1e-9)
}

func TestGenerate_TolerateSingleBranchFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"

	fake := &llmtest.Fake{
		Responses: map[float64]string{0.5: "괜찮은 응답입니다"},
		ErrAt: map[float64]error{
			0.3: fmt.Errorf("boom"),
			0.7: fmt.Errorf("boom"),
		},
	}
	r := airewriter.NewRewriter(fake, cfg)

	v := r.Generate(context.Background(), "some prompt", classifier.ExtractFeatures("some prompt"), nil)
	require.False(t, v.NeedsSetup)
	assert.Equal(t, "괜찮은 응답입니다", v.Text)
}

func TestGenerate_AllBranchesFailReturnsNeedsSetup(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	fake := &llmtest.Fake{Err: fmt.Errorf("boom")}
	r := airewriter.NewRewriter(fake, cfg)

	v := r.Generate(context.Background(), "some prompt", classifier.ExtractFeatures("some prompt"), nil)
	assert.True(t, v.NeedsSetup)
}

func TestGenerate_CacheNeverExceedsConfiguredCapacity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	cfg.AIRewriter.CacheSize = 5
	fake := &llmtest.Fake{Responses: map[float64]string{
		0.3: "a", 0.5: "b", 0.7: "c",
	}}
	r := airewriter.NewRewriter(fake, cfg)

	for i := 0; i < 20; i++ {
		text := fmt.Sprintf("distinct prompt %d", i)
		r.Generate(context.Background(), text, classifier.ExtractFeatures(text), nil)
	}
	assert.LessOrEqual(t, r.CacheSize(), 5)
}

func TestGenerate_SanitizesIntroPhrasesAndQuotes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	fake := &llmtest.Fake{Responses: map[float64]string{
		0.3: "Here's the rewritten prompt:\n\"버그를 고쳐줘\"",
	}}
	r := airewriter.NewRewriter(fake, cfg)

	v := r.Generate(context.Background(), "fix bug", classifier.ExtractFeatures("fix bug"), nil)
	assert.Equal(t, "버그를 고쳐줘", v.Text)
}
