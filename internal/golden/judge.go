package golden

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/philokalos/promptlens/internal/config"
	"github.com/philokalos/promptlens/internal/llm"
	"github.com/philokalos/promptlens/internal/logging"
	"github.com/philokalos/promptlens/internal/types"
)

// judgeSystemPrompt demands six JSON scores plus reasoning. The judge is never trusted beyond this narrow contract.
const judgeSystemPrompt = `You are a strict prompt-quality grader using the GOLDEN framework
(Goal, Output, Limits, Data, Evaluation, Next). Score the user's prompt on each
dimension from 0.0 to 1.0. Respond with ONLY a JSON object of the form:
{"goal":0.0,"output":0.0,"limits":0.0,"data":0.0,"evaluation":0.0,"next":0.0,"reasoning":"..."}
No markdown fences, no preamble, no trailing text.`

type judgeResponse struct {
	Goal       float64 `json:"goal"`
	Output     float64 `json:"output"`
	Limits     float64 `json:"limits"`
	Data       float64 `json:"data"`
	Evaluation float64 `json:"evaluation"`
	Next       float64 `json:"next"`
	Reasoning  string  `json:"reasoning"`
}

type judgeCacheEntry struct {
	score     types.GoldenScore
	createdAt time.Time
}

// Judge merges the rule-based GOLDEN score with an LLM's own scoring,
// caching by prompt fingerprint.
type Judge struct {
	provider llm.Provider
	cfg      *config.Config

	mu    sync.Mutex
	cache map[string]judgeCacheEntry
}

// NewJudge builds a Judge. provider may be nil if llm_judge.enabled is
// false; Merge then always falls back to the rule score.
func NewJudge(provider llm.Provider, cfg *config.Config) *Judge {
	return &Judge{provider: provider, cfg: cfg, cache: make(map[string]judgeCacheEntry)}
}

// Fingerprint returns a truncated cryptographic hash of the prompt text,
// used as the judge cache key.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

// Merge returns the final GoldenScore for text: the rule score alone if the
// judge is disabled, unavailable, or fails; otherwise a per-dimension
// weighted merge of the rule and LLM scores. mergeMode reports which path
// was taken ("rule-only", "llm-heavy", "balanced", or "cached" when the LLM
// score came from the cache) for logging.
func (j *Judge) Merge(ctx context.Context, text string, rule types.GoldenScore) (merged types.GoldenScore, mergeMode string, fellBack bool) {
	if j == nil || j.provider == nil || !j.cfg.LLMJudge.Enabled {
		return rule, "rule-only", false
	}

	fp := Fingerprint(text)
	if cached, ok := j.lookup(fp); ok {
		return j.mergeScores(rule, cached), "cached", false
	}

	callCtx, cancel := context.WithTimeout(ctx, j.cfg.LLMJudgeTimeout())
	defer cancel()

	raw, err := j.provider.Call(callCtx, judgeSystemPrompt, text, 0.0)
	if err != nil {
		logging.EvaluatorWarn("llm judge call failed, falling back to rule score: %v", err)
		return rule, "rule-only", true
	}

	llmScore, err := parseJudgeResponse(raw)
	if err != nil {
		logging.EvaluatorWarn("llm judge response unparseable, falling back to rule score: %v", err)
		return rule, "rule-only", true
	}

	j.store(fp, llmScore)
	return j.mergeScores(rule, llmScore), mergeModeFor(rule, llmScore), false
}

func (j *Judge) lookup(fp string) (types.GoldenScore, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry, ok := j.cache[fp]
	if !ok {
		return types.GoldenScore{}, false
	}
	if time.Since(entry.createdAt) > j.cfg.LLMJudgeCacheTTL() {
		delete(j.cache, fp)
		return types.GoldenScore{}, false
	}
	return entry.score, true
}

// store inserts fp into the cache, evicting entries older than the TTL if
// the cache is at capacity.
func (j *Judge) store(fp string, score types.GoldenScore) {
	j.mu.Lock()
	defer j.mu.Unlock()

	const maxEntries = 100
	if len(j.cache) >= maxEntries {
		now := time.Now()
		for key, entry := range j.cache {
			if now.Sub(entry.createdAt) > j.cfg.LLMJudgeCacheTTL() {
				delete(j.cache, key)
			}
		}
	}
	if len(j.cache) >= maxEntries {
		j.evictOldest()
	}
	j.cache[fp] = judgeCacheEntry{score: score, createdAt: time.Now()}
}

// evictOldest drops the single oldest entry; caller holds j.mu.
func (j *Judge) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true
	for key, entry := range j.cache {
		if first || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
			first = false
		}
	}
	if oldestKey != "" {
		delete(j.cache, oldestKey)
	}
}

// CacheSize reports the current cache population (test/metrics hook).
func (j *Judge) CacheSize() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.cache)
}

var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

func parseJudgeResponse(raw string) (types.GoldenScore, error) {
	body := raw
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		body = m[1]
	}

	var resp judgeResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return types.GoldenScore{}, fmt.Errorf("parse judge json: %w", err)
	}

	score := types.GoldenScore{
		Goal:       clamp01(resp.Goal),
		Output:     clamp01(resp.Output),
		Limits:     clamp01(resp.Limits),
		Data:       clamp01(resp.Data),
		Evaluation: clamp01(resp.Evaluation),
		Next:       clamp01(resp.Next),
	}
	score.Recompute()
	return score, nil
}

// mergeWeight returns the rule/llm weight pair for a single dimension,
// switching to an "llm-heavy" split when the two disagree by more than
// 0.25.
func mergeWeight(rule, llmVal float64) (ruleWeight, llmWeight float64) {
	diff := rule - llmVal
	if diff < 0 {
		diff = -diff
	}
	if diff > 0.25 {
		return 0.3, 0.7
	}
	return 0.45, 0.55
}

func (j *Judge) mergeScores(rule, llmScore types.GoldenScore) types.GoldenScore {
	merge := func(r, l float64) float64 {
		rw, lw := mergeWeight(r, l)
		return r*rw + l*lw
	}
	merged := types.GoldenScore{
		Goal:       merge(rule.Goal, llmScore.Goal),
		Output:     merge(rule.Output, llmScore.Output),
		Limits:     merge(rule.Limits, llmScore.Limits),
		Data:       merge(rule.Data, llmScore.Data),
		Evaluation: merge(rule.Evaluation, llmScore.Evaluation),
		Next:       merge(rule.Next, llmScore.Next),
	}
	merged.Recompute()
	return merged
}

func mergeModeFor(rule, llmScore types.GoldenScore) string {
	diffs := []float64{
		rule.Goal - llmScore.Goal,
		rule.Output - llmScore.Output,
		rule.Limits - llmScore.Limits,
		rule.Data - llmScore.Data,
		rule.Evaluation - llmScore.Evaluation,
		rule.Next - llmScore.Next,
	}
	var maxAbs float64
	for _, d := range diffs {
		if d < 0 {
			d = -d
		}
		if d > maxAbs {
			maxAbs = d
		}
	}
	if maxAbs > 0.25 {
		return "llm-heavy"
	}
	return "balanced"
}
