package orchestrator_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philokalos/promptlens/internal/airewriter"
	"github.com/philokalos/promptlens/internal/config"
	"github.com/philokalos/promptlens/internal/golden"
	"github.com/philokalos/promptlens/internal/llm/llmtest"
	"github.com/philokalos/promptlens/internal/orchestrator"
	"github.com/philokalos/promptlens/internal/store"
	"github.com/philokalos/promptlens/internal/types"
)

func TestAnalyze_WithoutRepoOrCredentials(t *testing.T) {
	cfg := config.DefaultConfig()
	judge := golden.NewJudge(nil, cfg)
	aiRewriter := airewriter.NewRewriter(nil, cfg)
	p := orchestrator.New(cfg, judge, aiRewriter, nil)

	result, err := p.Analyze(context.Background(), types.Prompt{Text: "fix bug"}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, types.IntentCommand, result.Classification.Intent)
	require.Len(t, result.Variants, 4)
	assert.Equal(t, types.VariantAI, result.Variants[3].Kind)
	assert.True(t, result.Variants[3].NeedsSetup)
	assert.False(t, result.Persisted)
	assert.NotNil(t, result.Enrichment)
}

func TestAnalyze_PersistsAndEnrichesWithRepo(t *testing.T) {
	cfg := config.DefaultConfig()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	judge := golden.NewJudge(nil, cfg)
	aiRewriter := airewriter.NewRewriter(nil, cfg)
	p := orchestrator.New(cfg, judge, aiRewriter, s)

	result, err := p.Analyze(context.Background(), types.Prompt{Text: "fix bug", ProjectPath: "/repo/a"}, nil)
	require.NoError(t, err)
	assert.True(t, result.Persisted)

	recent, err := s.RecentRecords(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestAnalyze_UsesLLMJudgeWhenEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLMJudge.Enabled = true
	fake := &llmtest.Fake{Responses: map[float64]string{
		0.0: `{"goal":0.9,"output":0.9,"limits":0.9,"data":0.9,"evaluation":0.9,"next":0.9,"reasoning":"ok"}`,
	}}
	judge := golden.NewJudge(fake, cfg)
	aiRewriter := airewriter.NewRewriter(nil, cfg)
	p := orchestrator.New(cfg, judge, aiRewriter, nil)

	result, err := p.Analyze(context.Background(), types.Prompt{Text: "fix bug"}, nil)
	require.NoError(t, err)
	assert.NotContains(t, result.Warnings, "llm judge unavailable, used rule-based score only")
}

func TestAnalyze_EmptyPromptReturnsTypedError(t *testing.T) {
	cfg := config.DefaultConfig()
	judge := golden.NewJudge(nil, cfg)
	aiRewriter := airewriter.NewRewriter(nil, cfg)
	p := orchestrator.New(cfg, judge, aiRewriter, nil)

	result, err := p.Analyze(context.Background(), types.Prompt{Text: "   "}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, orchestrator.ErrEmptyPrompt))
	require.NotNil(t, result)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, types.SeverityHigh, result.Issues[0].Severity)
	assert.Empty(t, result.Variants)
}

func TestAnalyze_OversizedPromptReturnsTypedError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxPromptLength = 10
	judge := golden.NewJudge(nil, cfg)
	aiRewriter := airewriter.NewRewriter(nil, cfg)
	p := orchestrator.New(cfg, judge, aiRewriter, nil)

	result, err := p.Analyze(context.Background(), types.Prompt{Text: strings.Repeat("x", 50)}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, orchestrator.ErrPromptTooLarge))
	require.NotNil(t, result)
	require.Len(t, result.Issues, 1)
}

func TestAnalyze_CancelledContextReturnsTypedError(t *testing.T) {
	cfg := config.DefaultConfig()
	judge := golden.NewJudge(nil, cfg)
	aiRewriter := airewriter.NewRewriter(nil, cfg)
	p := orchestrator.New(cfg, judge, aiRewriter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Analyze(ctx, types.Prompt{Text: "fix bug"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, orchestrator.ErrCancelled))
	assert.Nil(t, result)
}
