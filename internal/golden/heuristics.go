// Package golden implements the GOLDEN evaluator: six rule-based dimension
// scorers (Goal, Output, Limits, Data, Evaluation, Next), issue emission,
// and an optional LLM-judge merge.
package golden

import (
	"regexp"

	"github.com/philokalos/promptlens/internal/types"
)

var (
	goalVerbsRe   = regexp.MustCompile(`(?i)(해줘|해주세요|만들어|구현해|작성해|수정해|고쳐|추가해|삭제해|정리해|개선해|create|implement|write|build|add|fix|refactor|generate|make|update|remove)`)
	goalObjRe     = regexp.MustCompile(`(?i)(목표는|목적은|하고 싶어|하고싶어|i want to|i need to|goal is|the goal|objective is)`)

	outputFmtRe = regexp.MustCompile(`(?i)(형식|포맷|출력:|출력 형식|json|yaml|table|표로|목록으로|bullet|markdown|마크다운|csv)`)
	outputSecRe = regexp.MustCompile(`(?m)^(#+\s|[-*]\s|\d+\.\s)`)

	limitsMarkerRe = regexp.MustCompile(`(?i)(제약|조건|범위|제한|only|without|don'?t|do not|하지마|하지 마|금지|제외|no more than|must not|cannot)`)
	limitsNegRe    = regexp.MustCompile(`(?i)(않게|않도록|말고|없이|no\s+\w+|never)`)

	dataContextRe = regexp.MustCompile(`(?i)(참고:|배경:|context:|현재 코드|기존 코드|error:|exception|traceback|stack trace)`)
	errorPatternRe = regexp.MustCompile(`(TypeError|ReferenceError|SyntaxError|at\s+\S+\s+\([^)]+:\d+:\d+\))`)

	evalCriteriaRe = regexp.MustCompile(`(?i)(성공 기준|완료 기준|검증|확인해|테스트해|must\s|should pass|success criteria|acceptance criteria|test(?:ed|ing)?\b)`)

	nextFollowupRe = regexp.MustCompile(`(?i)(다음 단계|그 다음|그다음|이후에|완료되면|after that|then\s|next step|follow[- ]?up|once done)`)
)

// scoreFromMatches converts a match count into a [0,1] score: 0 matches
// scores a low floor, otherwise 0.35 plus 0.25 per match, capped at 1.0.
func scoreFromMatches(count int, floor float64) float64 {
	if count == 0 {
		return floor
	}
	score := 0.35 + 0.25*float64(count)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func countMatches(re *regexp.Regexp, text string) int {
	return len(re.FindAllString(text, -1))
}

// scoreGoal rewards imperative verbs and explicit objective phrases;
// penalizes very short prompts.
func scoreGoal(text string, f types.Features) float64 {
	matches := countMatches(goalVerbsRe, text) + countMatches(goalObjRe, text)
	score := scoreFromMatches(matches, 0.15)
	if f.Length <= 15 {
		score *= 0.5
	}
	return clamp01(score)
}

// scoreOutput rewards explicit format keywords and structured section
// markers.
func scoreOutput(text string) float64 {
	matches := countMatches(outputFmtRe, text)
	if outputSecRe.MatchString(text) {
		matches++
	}
	return clamp01(scoreFromMatches(matches, 0.1))
}

// scoreLimits rewards constraint markers and negation patterns.
func scoreLimits(text string) float64 {
	matches := countMatches(limitsMarkerRe, text) + countMatches(limitsNegRe, text)
	return clamp01(scoreFromMatches(matches, 0.1))
}

// scoreData rewards code blocks, file paths, error messages, or explicit
// context markers.
func scoreData(text string, f types.Features) float64 {
	matches := countMatches(dataContextRe, text) + countMatches(errorPatternRe, text)
	if f.HasCodeBlock {
		matches += 2
	}
	if f.HasFilePath {
		matches++
	}
	return clamp01(scoreFromMatches(matches, 0.1))
}

// scoreEvaluation rewards success-criteria markers and testing verbs.
func scoreEvaluation(text string) float64 {
	matches := countMatches(evalCriteriaRe, text)
	return clamp01(scoreFromMatches(matches, 0.1))
}

// scoreNext rewards follow-up phrases.
func scoreNext(text string) float64 {
	matches := countMatches(nextFollowupRe, text)
	return clamp01(scoreFromMatches(matches, 0.1))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EvaluateRule scores text along all six GOLDEN dimensions using only rule
// heuristics. Pure function of text + features.
func EvaluateRule(text string, f types.Features) types.GoldenScore {
	score := types.GoldenScore{
		Goal:       scoreGoal(text, f),
		Output:     scoreOutput(text),
		Limits:     scoreLimits(text),
		Data:       scoreData(text, f),
		Evaluation: scoreEvaluation(text),
		Next:       scoreNext(text),
	}
	score.Recompute()
	return score
}

var dimensionSuggestions = map[types.Dimension]string{
	types.DimensionGoal:       "목표(Goal)를 한 문장으로 명확히 적어주세요. 예: \"~을 수정해줘\"",
	types.DimensionOutput:     "원하는 출력 형식을 지정해주세요. 예: \"JSON으로 출력해줘\"",
	types.DimensionLimits:     "제약 조건을 추가해주세요. 예: \"~없이\", \"~만\"",
	types.DimensionData:       "관련 코드나 에러 메시지, 파일 경로를 포함해주세요.",
	types.DimensionEvaluation: "성공 기준을 명시해주세요. 예: \"테스트를 통과해야 함\"",
	types.DimensionNext:       "완료 후 다음 단계를 알려주세요.",
}

// IssuesForScore emits one Issue per dimension below threshold, severity
// inversely proportional to the score.
func IssuesForScore(score types.GoldenScore, threshold float64) []types.Issue {
	var issues []types.Issue
	for _, dim := range types.AllDimensions {
		v := score.Get(dim)
		if v >= threshold {
			continue
		}
		issues = append(issues, types.Issue{
			Severity:   severityFor(v, threshold),
			Category:   dim,
			Message:    messageFor(dim, v),
			Suggestion: dimensionSuggestions[dim],
		})
	}
	return issues
}

func severityFor(v, threshold float64) types.Severity {
	ratio := v / threshold
	switch {
	case ratio < 0.4:
		return types.SeverityHigh
	case ratio < 0.75:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

var dimensionLabels = map[types.Dimension]string{
	types.DimensionGoal:       "목표(Goal)",
	types.DimensionOutput:     "출력(Output)",
	types.DimensionLimits:     "제약(Limits)",
	types.DimensionData:       "데이터(Data)",
	types.DimensionEvaluation: "평가 기준(Evaluation)",
	types.DimensionNext:       "다음 단계(Next)",
}

func messageFor(dim types.Dimension, v float64) string {
	return dimensionLabels[dim] + " 점수가 낮습니다"
}

// GradeFor maps a normalized [0,1] total to a letter grade using the given
// boundaries.
func GradeFor(total float64, a, b, c, d float64) types.Grade {
	switch {
	case total >= a:
		return types.GradeA
	case total >= b:
		return types.GradeB
	case total >= c:
		return types.GradeC
	case total >= d:
		return types.GradeD
	default:
		return types.GradeF
	}
}

// HasCodeBlockOrPath is a small helper the rewriter reuses to decide
// whether the Data dimension's no-op path applies.
func HasCodeBlockOrPath(f types.Features) bool {
	return f.HasCodeBlock || f.HasFilePath
}
