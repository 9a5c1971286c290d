// Package airewriter generates LLM-backed rewrite variants at three
// temperatures concurrently, re-scores each with the rule-based GOLDEN
// evaluator, and picks the best candidate.
package airewriter

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/philokalos/promptlens/internal/classifier"
	"github.com/philokalos/promptlens/internal/config"
	"github.com/philokalos/promptlens/internal/golden"
	"github.com/philokalos/promptlens/internal/llm"
	"github.com/philokalos/promptlens/internal/logging"
	"github.com/philokalos/promptlens/internal/types"
)

const systemPromptTemplate = `You are an expert prompt engineer. Rewrite the user's prompt so it scores
higher on the GOLDEN framework (Goal, Output, Limits, Data, Evaluation, Next).
Keep the user's original language (Korean or English). Return ONLY the rewritten
prompt text, with no preamble, no explanation, no surrounding quotes.%s`

// Rewriter produces AI-backed rewrite variants, caching by a fingerprint of
// (prompt text, language, context digest).
type Rewriter struct {
	provider llm.Provider
	cfg      *config.Config

	mu      sync.Mutex
	cache   map[uint64]cacheEntry
	current context.CancelFunc
}

type cacheEntry struct {
	variant   types.Variant
	createdAt time.Time
}

// NewRewriter builds a Rewriter. provider may be nil; Generate then always
// returns the needs_setup placeholder.
func NewRewriter(provider llm.Provider, cfg *config.Config) *Rewriter {
	return &Rewriter{provider: provider, cfg: cfg, cache: make(map[uint64]cacheEntry)}
}

// Generate runs the three-temperature fan-out and returns the single best
// variant, or a needs_setup placeholder if no credential is configured.
// Starting a new call cancels any prior in-flight call on this Rewriter.
func (r *Rewriter) Generate(ctx context.Context, text string, f types.Features, sessionCtx *types.SessionContext) types.Variant {
	if r == nil || r.provider == nil || !r.cfg.HasLLMCredential() {
		return types.Variant{Kind: types.VariantAI, NeedsSetup: true}
	}

	callCtx, cancel := r.replaceInFlight(ctx)
	defer cancel()

	fp := fingerprint(text, f.LanguageHint, sessionCtx)
	if cached, ok := r.lookup(fp); ok {
		return cached
	}

	best := r.fanOut(callCtx, text, f, sessionCtx)
	if best.Kind == types.VariantAI && !best.NeedsSetup && best.Text != "" {
		r.store(fp, best)
	}
	return best
}

func (r *Rewriter) replaceInFlight(parent context.Context) (context.Context, context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current()
	}
	callCtx, cancel := context.WithTimeout(parent, r.cfg.AIRewriterTimeout())
	r.current = cancel
	return callCtx, cancel
}

// candidate pairs a generated variant with the GOLDEN score used to rank
// it, kept separate from Variant.Confidence (which is temperature-derived,
// not a score).
type candidate struct {
	variant   types.Variant
	ruleScore float64
}

// confidenceForTemperature maps a sampling temperature to the variant's
// reported confidence: lower temperature (more conservative sampling)
// yields higher confidence.
func confidenceForTemperature(temp float64) float64 {
	return 0.9 - 0.2*temp
}

// fanOut calls the provider once per configured temperature, concurrently,
// tolerating independent branch failures.
func (r *Rewriter) fanOut(ctx context.Context, text string, f types.Features, sessionCtx *types.SessionContext) types.Variant {
	temps := r.cfg.AIRewriter.Temperatures
	if len(temps) == 0 {
		temps = []float64{0.3, 0.5, 0.7}
	}

	candidates := make([]candidate, len(temps))
	g, gctx := errgroup.WithContext(ctx)

	system := buildSystemPrompt(sessionCtx)
	for i, temp := range temps {
		i, temp := i, temp
		g.Go(func() error {
			raw, err := r.provider.Call(gctx, system, text, temp)
			if err != nil {
				logging.AIRewriterWarn("branch temp=%.2f failed: %v", temp, err)
				return nil
			}
			clean := sanitize(raw)
			if clean == "" {
				return nil
			}
			score := golden.EvaluateRule(clean, classifier.ExtractFeatures(clean))
			candidates[i] = candidate{
				variant: types.Variant{
					Kind:              types.VariantAI,
					Text:              clean,
					Confidence:        confidenceForTemperature(temp),
					OriginTemperature: temp,
				},
				ruleScore: score.Total,
			}
			return nil
		})
	}
	_ = g.Wait()

	return selectBest(candidates, text, f)
}

// selectBest picks the highest rule-scoring non-empty candidate, ties
// broken by lower temperature, and computes improvement_percent against
// the original prompt's own rule score. The returned Variant's Confidence
// stays the temperature-derived value computed in fanOut; ruleScore is
// used only for ranking and the improvement-percent calculation.
func selectBest(candidates []candidate, originalText string, f types.Features) types.Variant {
	var nonEmpty []candidate
	for _, c := range candidates {
		if c.variant.Text != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if len(nonEmpty) == 0 {
		return types.Variant{Kind: types.VariantAI, NeedsSetup: true}
	}

	sort.SliceStable(nonEmpty, func(i, j int) bool {
		if nonEmpty[i].ruleScore != nonEmpty[j].ruleScore {
			return nonEmpty[i].ruleScore > nonEmpty[j].ruleScore
		}
		return nonEmpty[i].variant.OriginTemperature < nonEmpty[j].variant.OriginTemperature
	})

	best := nonEmpty[0].variant
	originalScore := golden.EvaluateRule(originalText, f)
	improvement := improvementPercent(originalScore.Total, nonEmpty[0].ruleScore)
	best.AIExplanation = fmt.Sprintf("원본 대비 %.0f%% 개선", improvement)
	best.KeyChanges = []string{"LLM 기반 전체 재작성"}
	return best
}

func improvementPercent(before, after float64) float64 {
	if before <= 0 {
		if after > 0 {
			return 100
		}
		return 0
	}
	return (after - before) / before * 100
}

var (
	introPhraseRe  = regexp.MustCompile(`(?i)^(here'?s|here is|물론입니다|알겠습니다|다음은)[^\n]*\n+`)
	separatorRe    = regexp.MustCompile("(?m)^-{3,}\\s*$")
	wrappingQuotes = regexp.MustCompile(`^["'\x60]+|["'\x60]+$`)
)

// sanitize strips the conversational wrapper an LLM sometimes adds around
// the rewritten prompt.
func sanitize(raw string) string {
	out := introPhraseRe.ReplaceAllString(raw, "")
	out = separatorRe.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)
	out = wrappingQuotes.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

func buildSystemPrompt(sessionCtx *types.SessionContext) string {
	hint := ""
	if sessionCtx != nil && len(sessionCtx.TechStack) > 0 {
		hint = fmt.Sprintf(" The project uses: %s.", strings.Join(sessionCtx.TechStack, ", "))
	}
	return fmt.Sprintf(systemPromptTemplate, hint)
}

// fingerprint hashes (text, language, context digest) with xxhash — the
// rewriter cache key has no cryptographic requirement, unlike the judge's
// sha256 fingerprint.
func fingerprint(text string, lang types.LanguageHint, sessionCtx *types.SessionContext) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(text)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(string(lang))
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(contextDigest(sessionCtx))
	return h.Sum64()
}

func contextDigest(ctx *types.SessionContext) string {
	if ctx == nil {
		return ""
	}
	return ctx.ProjectPath + "|" + strings.Join(ctx.TechStack, ",") + "|" + ctx.GitBranch
}

func (r *Rewriter) lookup(fp uint64) (types.Variant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[fp]
	if !ok {
		return types.Variant{}, false
	}
	if time.Since(entry.createdAt) > r.cfg.AIRewriterCacheTTL() {
		delete(r.cache, fp)
		return types.Variant{}, false
	}
	return entry.variant, true
}

func (r *Rewriter) store(fp uint64, v types.Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	maxEntries := r.cfg.AIRewriter.CacheSize
	if maxEntries <= 0 {
		maxEntries = 100
	}
	if len(r.cache) >= maxEntries {
		now := time.Now()
		for key, entry := range r.cache {
			if now.Sub(entry.createdAt) > r.cfg.AIRewriterCacheTTL() {
				delete(r.cache, key)
			}
		}
	}
	if len(r.cache) >= maxEntries {
		r.evictOldest()
	}
	r.cache[fp] = cacheEntry{variant: v, createdAt: time.Now()}
}

func (r *Rewriter) evictOldest() {
	var oldestKey uint64
	var oldestTime time.Time
	first := true
	for key, entry := range r.cache {
		if first || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
			first = false
		}
	}
	if !first {
		delete(r.cache, oldestKey)
	}
}

// CacheSize reports the current cache population (test/metrics hook).
func (r *Rewriter) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}
