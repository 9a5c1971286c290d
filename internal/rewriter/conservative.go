package rewriter

import (
	"fmt"
	"strings"

	"github.com/philokalos/promptlens/internal/types"
)

// conservativeConfidence never varies by input; only the variant's content
// changes.
const conservativeConfidence = 0.6

// buildConservative returns a single-targeted-patch variant keyed on the
// weakest GOLDEN dimension. If the prompt already scores well everywhere,
// it returns the cleaned text unchanged and says so. category and
// sessionCtx drive which patch gets applied: a weak Goal gets a
// category-tag prefix, a weak Output gets a category-inferred format
// clause, a weak Limits gets tech-stack constraints when the session
// supplies them, and a weak Data gets project context when available
// (otherwise the prompt is left unchanged, since there is nothing to add).
func buildConservative(clean string, score types.GoldenScore, threshold float64, category types.TaskCategory, sessionCtx *types.SessionContext) types.Variant {
	weakest := weakestDimensions(score, 1)[0]
	val := score.Get(weakest)

	if val >= threshold {
		return types.Variant{
			Kind:       types.VariantConservative,
			Text:       clean,
			KeyChanges: []string{"[이미 잘 작성됨]"},
			Confidence: conservativeConfidence,
		}
	}

	text, change := applyConservativePatch(clean, weakest, category, sessionCtx)
	return types.Variant{
		Kind:       types.VariantConservative,
		Text:       text,
		KeyChanges: []string{change},
		Confidence: conservativeConfidence,
	}
}

// applyConservativePatch returns the patched prompt text plus the
// key_changes entry describing what was applied.
func applyConservativePatch(clean string, dim types.Dimension, category types.TaskCategory, sessionCtx *types.SessionContext) (string, string) {
	switch dim {
	case types.DimensionGoal:
		tag := fmt.Sprintf("[%s]", CategoryTag(category))
		patch := dimensionPatchPrompt[types.DimensionGoal] + dimensionPatchFiller[types.DimensionGoal]
		return fmt.Sprintf("%s %s\n\n%s", tag, clean, patch), patch

	case types.DimensionOutput:
		patch := dimensionPatchPrompt[types.DimensionOutput] + OutputFormatFor(category)
		return appendPatch(clean, patch), patch

	case types.DimensionLimits:
		patch := dimensionPatchPrompt[types.DimensionLimits] + limitsConstraintText(sessionCtx)
		return appendPatch(clean, patch), patch

	case types.DimensionData:
		if line := projectContextLine(sessionCtx); line != "" {
			return appendPatch(clean, line), line
		}
		return clean, "[변경 없음: 프로젝트 컨텍스트 없음]"

	case types.DimensionEvaluation:
		patch := dimensionPatchPrompt[types.DimensionEvaluation] + SuccessCriteriaFor(category)
		return appendPatch(clean, patch), patch

	case types.DimensionNext:
		patch := dimensionPatchPrompt[types.DimensionNext] + dimensionPatchFiller[types.DimensionNext]
		return appendPatch(clean, patch), patch

	default:
		return clean, "[변경 없음]"
	}
}

func appendPatch(clean, patch string) string {
	return fmt.Sprintf("%s\n\n%s", clean, patch)
}

// limitsConstraintText prefers tech-stack-derived constraints; falls back
// to a generic brevity clause when the session has none.
func limitsConstraintText(ctx *types.SessionContext) string {
	if ctx != nil {
		var out []string
		for _, stack := range ctx.TechStack {
			if c, ok := techStackConstraint[strings.ToLower(stack)]; ok {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return strings.Join(out, "; ")
		}
	}
	return "간결하게 작성하고 범위를 벗어나는 변경은 하지 않기"
}

// projectContextLine renders a one-line project-context patch, or "" if
// the session carries nothing worth adding.
func projectContextLine(ctx *types.SessionContext) string {
	if ctx == nil {
		return ""
	}
	if ctx.ProjectName != "" {
		return "참고: " + ctx.ProjectName + " 프로젝트 컨텍스트를 반영할 것"
	}
	if ctx.ProjectPath != "" {
		return "참고: " + ctx.ProjectPath + " 프로젝트 컨텍스트를 반영할 것"
	}
	return ""
}
