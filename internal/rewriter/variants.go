package rewriter

import (
	"github.com/philokalos/promptlens/internal/types"
)

// weaknessThreshold is the default GOLDEN floor below which the
// conservative variant emits a patch rather than "already good".
const weaknessThreshold = 0.5

// GenerateVariants produces the three deterministic rule-based rewrite
// variants, in the fixed order [conservative, balanced, comprehensive].
func GenerateVariants(text string, score types.GoldenScore, sessionCtx *types.SessionContext) []types.Variant {
	return GenerateVariantsWithThreshold(text, score, sessionCtx, weaknessThreshold)
}

// GenerateVariantsWithThreshold is GenerateVariants with an explicit
// weakness threshold, used by callers that source it from configuration.
func GenerateVariantsWithThreshold(text string, score types.GoldenScore, sessionCtx *types.SessionContext, threshold float64) []types.Variant {
	clean := Preprocess(text)
	category := DetectCategory(text)

	return []types.Variant{
		buildConservative(clean, score, threshold, category, sessionCtx),
		buildBalanced(clean, score, sessionCtx),
		buildComprehensive(text, clean, score, category, sessionCtx),
	}
}
