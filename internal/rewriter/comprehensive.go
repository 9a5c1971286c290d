package rewriter

import (
	"fmt"
	"strings"

	"github.com/philokalos/promptlens/internal/types"
)

const (
	comprehensiveBaseConfidence    = 0.7
	comprehensiveContextConfidence = 0.85
)

var techStackConstraint = map[string]string{
	"typescript": "타입 안정성을 유지하고 any 사용을 피할 것",
	"react":      "기존 컴포넌트 구조와 훅 패턴을 따를 것",
	"firebase":   "보안 규칙과 기존 컬렉션 스키마를 변경하지 말 것",
	"vue":        "기존 컴포지션 API 스타일을 유지할 것",
	"next.js":    "서버/클라이언트 컴포넌트 경계를 유지할 것",
	"electron":   "메인/렌더러 프로세스 경계를 넘지 않을 것",
	"node.js":    "기존 비동기 처리 방식(async/await)을 유지할 것",
	"vite":       "빌드 설정 파일은 변경하지 말 것",
	"tailwind":   "유틸리티 클래스 컨벤션을 따르고 커스텀 CSS를 추가하지 말 것",
}

// buildComprehensive assembles the fully-structured variant with labeled
// 요청/출력/제약/참조 코드/참조 에러/완료 조건 sections.
func buildComprehensive(original, clean string, score types.GoldenScore, category types.TaskCategory, sessionCtx *types.SessionContext) types.Variant {
	var b strings.Builder
	var keyChanges []string

	tag := CategoryTag(category)
	fmt.Fprintf(&b, "[%s]\n\n", tag)

	// Code blocks and error/stack lines are rendered separately below
	// (참조 코드/참조 에러); strip them here so they are never duplicated.
	fmt.Fprintf(&b, "요청:\n%s\n\n", StripReferencedContent(clean))

	fmt.Fprintf(&b, "출력:\n%s\n\n", OutputFormatFor(category))
	keyChanges = append(keyChanges, "출력 형식 명시")

	constraints := constraintsFor(sessionCtx)
	if len(constraints) > 0 {
		fmt.Fprintf(&b, "제약:\n%s\n\n", bulletList(constraints))
		keyChanges = append(keyChanges, "제약 조건 추가")
	}

	if code := ExtractCodeReferences(original); len(code) > 0 {
		fmt.Fprintf(&b, "참조 코드:\n```\n%s\n```\n\n", strings.Join(code, "\n\n"))
		keyChanges = append(keyChanges, "참조 코드 정리")
	}

	if errs := ExtractErrorReferences(original); len(errs) > 0 {
		fmt.Fprintf(&b, "참조 에러:\n%s\n\n", strings.Join(errs, "\n"))
		keyChanges = append(keyChanges, "참조 에러 정리")
	}

	fmt.Fprintf(&b, "완료 조건:\n%s\n", SuccessCriteriaFor(category))
	keyChanges = append(keyChanges, "완료 조건 명시")

	confidence := comprehensiveBaseConfidence
	if sessionCtx != nil {
		confidence = comprehensiveContextConfidence
	}

	return types.Variant{
		Kind:       types.VariantComprehensive,
		Text:       strings.TrimSpace(b.String()),
		KeyChanges: keyChanges,
		Confidence: confidence,
	}
}

// constraintsFor maps a session's declared tech stack onto stock constraint
// phrases.
func constraintsFor(ctx *types.SessionContext) []string {
	if ctx == nil {
		return nil
	}
	var out []string
	for _, stack := range ctx.TechStack {
		if c, ok := techStackConstraint[strings.ToLower(stack)]; ok {
			out = append(out, c)
		}
	}
	return out
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
