package rewriter

import (
	"regexp"

	"github.com/philokalos/promptlens/internal/types"
)

// categoryPattern is a lightweight, rewriter-local signal, independent of
// the classifier's keyword tables.
type categoryPattern struct {
	category TaskCategoryTag
	re       *regexp.Regexp
}

// TaskCategoryTag is a local alias kept distinct from types.TaskCategory so
// the rewriter's detector can be read and adapted independently of the
// classifier's enum.
type TaskCategoryTag = types.TaskCategory

var categoryPatterns = []categoryPattern{
	{types.CategoryBugFix, regexp.MustCompile(`(?i)(버그|오류|에러|고쳐|fix|bug|error|exception|crash)`)},
	{types.CategoryTesting, regexp.MustCompile(`(?i)(테스트|test|spec\b|unit test)`)},
	{types.CategoryRefactoring, regexp.MustCompile(`(?i)(리팩토링|refactor|정리|clean up|restructure)`)},
	{types.CategoryDocumentation, regexp.MustCompile(`(?i)(문서화|document|readme|docstring)`)},
	{types.CategoryCodeReview, regexp.MustCompile(`(?i)(리뷰|검토|review)`)},
	{types.CategoryArchitecture, regexp.MustCompile(`(?i)(아키텍처|architecture|설계|design the system)`)},
	{types.CategoryDeployment, regexp.MustCompile(`(?i)(배포|deploy|release|ci/cd|pipeline)`)},
	{types.CategoryDataAnalysis, regexp.MustCompile(`(?i)(데이터 분석|analyze data|통계|시각화)`)},
	{types.CategoryExplanation, regexp.MustCompile(`(?i)(설명해|explain|왜|why|어떻게|how)`)},
	{types.CategoryCodeGeneration, regexp.MustCompile(`(?i)(구현해|작성해|만들어|implement|generate|create|build)`)},
}

// DetectCategory runs a quick, self-contained scan for a category tag,
// falling back to general when nothing matches.
func DetectCategory(text string) types.TaskCategory {
	for _, p := range categoryPatterns {
		if p.re.MatchString(text) {
			return p.category
		}
	}
	return types.CategoryGeneral
}

var categoryTagKorean = map[types.TaskCategory]string{
	types.CategoryCodeGeneration: "코드 생성",
	types.CategoryCodeReview:     "코드 리뷰",
	types.CategoryBugFix:        "버그 수정",
	types.CategoryRefactoring:   "리팩토링",
	types.CategoryExplanation:   "설명",
	types.CategoryDocumentation: "문서화",
	types.CategoryTesting:       "테스트",
	types.CategoryArchitecture:  "아키텍처",
	types.CategoryDeployment:    "배포",
	types.CategoryDataAnalysis:  "데이터 분석",
	types.CategoryGeneral:       "일반",
	types.CategoryUnknown:       "일반",
}

// CategoryTag renders a category as the short Korean label used in
// "[category-tag]" prefixes and comprehensive section headers.
func CategoryTag(c types.TaskCategory) string {
	if tag, ok := categoryTagKorean[c]; ok {
		return tag
	}
	return string(c)
}

var categoryOutputFormat = map[types.TaskCategory]string{
	types.CategoryCodeGeneration: "전체 코드 블록",
	types.CategoryCodeReview:     "항목별 피드백 목록",
	types.CategoryBugFix:        "수정된 코드와 원인 설명",
	types.CategoryRefactoring:   "리팩토링된 코드와 변경 요약",
	types.CategoryExplanation:   "단계별 설명",
	types.CategoryDocumentation: "마크다운 문서",
	types.CategoryTesting:       "테스트 코드",
	types.CategoryArchitecture:  "구조 다이어그램과 설명",
	types.CategoryDeployment:    "배포 절차 목록",
	types.CategoryDataAnalysis:  "분석 결과 요약과 표",
	types.CategoryGeneral:       "명확한 답변",
	types.CategoryUnknown:       "명확한 답변",
}

// OutputFormatFor infers a reasonable "Output:" clause for a category.
func OutputFormatFor(c types.TaskCategory) string {
	if v, ok := categoryOutputFormat[c]; ok {
		return v
	}
	return "명확한 답변"
}

var categorySuccessCriteria = map[types.TaskCategory]string{
	types.CategoryCodeGeneration: "코드가 컴파일/실행되고 요구사항을 충족해야 함",
	types.CategoryCodeReview:     "주요 이슈가 모두 식별되어야 함",
	types.CategoryBugFix:        "버그가 재현되지 않고 관련 테스트를 통과해야 함",
	types.CategoryRefactoring:   "동작이 동일하게 유지되고 기존 테스트를 통과해야 함",
	types.CategoryExplanation:   "핵심 개념이 명확히 전달되어야 함",
	types.CategoryDocumentation: "문서가 최신 동작을 정확히 반영해야 함",
	types.CategoryTesting:       "테스트가 실패 케이스를 포함하고 통과해야 함",
	types.CategoryArchitecture:  "제안된 구조가 요구사항과 제약을 모두 만족해야 함",
	types.CategoryDeployment:    "배포가 오류 없이 완료되어야 함",
	types.CategoryDataAnalysis:  "분석 결론이 데이터로 뒷받침되어야 함",
	types.CategoryGeneral:       "요청한 결과물이 기준을 충족해야 함",
	types.CategoryUnknown:       "요청한 결과물이 기준을 충족해야 함",
}

// SuccessCriteriaFor returns the category-specific "완료 조건" text.
func SuccessCriteriaFor(c types.TaskCategory) string {
	if v, ok := categorySuccessCriteria[c]; ok {
		return v
	}
	return "요청한 결과물이 기준을 충족해야 함"
}
