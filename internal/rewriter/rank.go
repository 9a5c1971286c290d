package rewriter

import (
	"sort"

	"github.com/philokalos/promptlens/internal/types"
)

// dimensionGap pairs a dimension with its score, used to pick which GOLDEN
// axes a variant should patch.
type dimensionGap struct {
	dim types.Dimension
	val float64
}

// weakestDimensions returns up to n dimensions ordered from weakest to
// strongest, ties broken by canonical GOLDEN order for determinism.
func weakestDimensions(score types.GoldenScore, n int) []types.Dimension {
	gaps := make([]dimensionGap, 0, len(types.AllDimensions))
	for _, d := range types.AllDimensions {
		gaps = append(gaps, dimensionGap{dim: d, val: score.Get(d)})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].val < gaps[j].val
	})
	if n > len(gaps) {
		n = len(gaps)
	}
	out := make([]types.Dimension, n)
	for i := 0; i < n; i++ {
		out[i] = gaps[i].dim
	}
	return out
}

var dimensionPatchPrompt = map[types.Dimension]string{
	types.DimensionGoal:       "목표: ",
	types.DimensionOutput:     "출력: ",
	types.DimensionLimits:     "제약: ",
	types.DimensionData:       "참고 자료: ",
	types.DimensionEvaluation: "완료 조건: ",
	types.DimensionNext:       "다음 단계: ",
}

var dimensionPatchFiller = map[types.Dimension]string{
	types.DimensionGoal:       "요청을 한 문장으로 명확히 정리",
	types.DimensionOutput:     "원하는 형식(코드/설명/목록 등)을 명시",
	types.DimensionLimits:     "범위를 벗어나는 변경은 하지 않기",
	types.DimensionData:       "관련 코드나 에러 메시지를 함께 제공",
	types.DimensionEvaluation: "완료로 볼 수 있는 기준을 명시",
	types.DimensionNext:       "완료 후 결과를 간단히 요약해서 알려주기",
}

// patchFor returns a generic, category-agnostic one-line patch for a weak
// dimension, used by the balanced variant which doesn't thread category or
// session context through (unlike the conservative variant's
// applyConservativePatch).
func patchFor(dim types.Dimension) string {
	return dimensionPatchPrompt[dim] + dimensionPatchFiller[dim]
}
