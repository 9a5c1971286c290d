package classifier

import "github.com/philokalos/promptlens/internal/types"

// keyword is a single bilingual keyword contributing weighted evidence
// toward an intent or task category.
type keyword struct {
	Text   string
	Weight float64
}

// intentKeywords maps each intent to its bilingual keyword table. Entries
// are lower-cased; matching is case-insensitive substring search.
var intentKeywords = map[types.Intent][]keyword{
	types.IntentCommand: {
		{"해줘", 1.0}, {"해주세요", 1.0}, {"만들어", 0.9}, {"만들어줘", 1.0},
		{"고쳐", 0.9}, {"고쳐줘", 1.0}, {"수정해", 0.9}, {"추가해", 0.8},
		{"삭제해", 0.8}, {"실행해", 0.8},
		{"please", 0.6}, {"create", 0.8}, {"generate", 0.8}, {"make", 0.6},
		{"add", 0.6}, {"remove", 0.6}, {"delete", 0.6}, {"fix", 0.8},
		{"implement", 0.8}, {"run", 0.5}, {"build", 0.6}, {"write", 0.6},
	},
	types.IntentQuestion: {
		{"뭐야", 0.9}, {"뭐예요", 0.9}, {"인가요", 0.8}, {"왜", 0.8},
		{"어떻게", 0.9}, {"어디", 0.7}, {"무엇", 0.8},
		{"what", 0.8}, {"why", 0.8}, {"how", 0.8}, {"when", 0.6},
		{"where", 0.6}, {"which", 0.6}, {"is it", 0.5}, {"can you", 0.5},
		{"does", 0.5},
	},
	types.IntentInstruction: {
		{"다음 단계로", 0.8}, {"순서대로", 0.8}, {"먼저", 0.6}, {"그다음", 0.6},
		{"단계별로", 0.9},
		{"step by step", 0.9}, {"first", 0.5}, {"then", 0.5}, {"next", 0.5},
		{"follow these", 0.8}, {"in order", 0.6},
	},
	types.IntentFeedback: {
		{"별로예요", 0.9}, {"틀렸어", 0.9}, {"좋아요", 0.7}, {"잘했어", 0.7},
		{"아니야", 0.7}, {"이상해", 0.7},
		{"wrong", 0.8}, {"incorrect", 0.8}, {"good job", 0.6}, {"not right", 0.8},
		{"doesn't work", 0.9}, {"broken", 0.7},
	},
	types.IntentContext: {
		{"참고로", 0.7}, {"배경은", 0.7}, {"현재 상황", 0.8}, {"맥락", 0.7},
		{"for context", 0.8}, {"background", 0.7}, {"fyi", 0.6},
		{"heads up", 0.6}, {"note that", 0.6},
	},
	types.IntentClarification: {
		{"확인해줘", 0.8}, {"맞나요", 0.8}, {"확실해", 0.7}, {"다시 말해줘", 0.8},
		{"confirm", 0.8}, {"clarify", 0.8}, {"to make sure", 0.7},
		{"did you mean", 0.8}, {"just checking", 0.7},
	},
}

// categoryKeywords maps each task category to its bilingual keyword table.
var categoryKeywords = map[types.TaskCategory][]keyword{
	types.CategoryCodeGeneration: {
		{"함수 만들어", 0.9}, {"구현해", 0.9}, {"코드 작성", 0.9}, {"새로 만들", 0.7},
		{"implement", 0.8}, {"write a function", 0.9}, {"generate code", 0.9},
		{"create a", 0.6}, {"build a", 0.6}, {"new component", 0.7},
	},
	types.CategoryCodeReview: {
		{"리뷰해줘", 0.9}, {"검토해줘", 0.9}, {"코드 리뷰", 0.9}, {"개선점", 0.6},
		{"review this code", 0.9}, {"code review", 0.9}, {"pr review", 0.8},
		{"any issues with", 0.6}, {"feedback on", 0.5},
	},
	types.CategoryBugFix: {
		{"버그", 0.9}, {"버그 수정", 1.0}, {"에러", 0.8}, {"오류", 0.8},
		{"안돼", 0.6}, {"작동 안해", 0.8}, {"고쳐줘", 0.9},
		{"bug", 0.9}, {"fix bug", 1.0}, {"error", 0.7}, {"exception", 0.7},
		{"crash", 0.8}, {"not working", 0.8}, {"broken", 0.7},
	},
	types.CategoryRefactoring: {
		{"리팩토링", 1.0}, {"구조 개선", 0.8}, {"정리해줘", 0.6},
		{"refactor", 1.0}, {"clean up", 0.7}, {"restructure", 0.8},
		{"simplify", 0.6}, {"extract", 0.5},
	},
	types.CategoryExplanation: {
		{"설명해줘", 0.9}, {"이해가 안돼", 0.7}, {"뭐하는", 0.6},
		{"explain", 0.9}, {"what does this do", 0.8}, {"how does", 0.6},
		{"walk me through", 0.7},
	},
	types.CategoryDocumentation: {
		{"문서화", 0.9}, {"주석 추가", 0.8}, {"readme", 0.8},
		{"document", 0.8}, {"docstring", 0.8}, {"comment", 0.5},
		{"write docs", 0.9},
	},
	types.CategoryTesting: {
		{"테스트 작성", 0.9}, {"테스트 추가", 0.9}, {"단위 테스트", 0.9},
		{"write tests", 0.9}, {"unit test", 0.9}, {"test coverage", 0.7},
		{"add tests", 0.8},
	},
	types.CategoryArchitecture: {
		{"아키텍처", 0.9}, {"설계해줘", 0.8}, {"구조를 설계", 0.8},
		{"architecture", 0.9}, {"design the system", 0.8}, {"high level design", 0.8},
	},
	types.CategoryDeployment: {
		{"배포해줘", 0.9}, {"배포", 0.8}, {"ci/cd", 0.8},
		{"deploy", 0.9}, {"release", 0.6}, {"pipeline", 0.6}, {"docker", 0.5},
	},
	types.CategoryDataAnalysis: {
		{"데이터 분석", 0.9}, {"통계", 0.6}, {"시각화", 0.6},
		{"analyze data", 0.9}, {"dataset", 0.6}, {"visualize", 0.6}, {"statistics", 0.6},
	},
}
