package rewriter

import (
	"regexp"
	"strings"

	"github.com/philokalos/promptlens/internal/classifier"
)

var (
	errorLineRe = regexp.MustCompile(`(?m)^.*(TypeError|ReferenceError|SyntaxError|RangeError|Exception|panic:|Traceback).*$`)
	stackFrameRe = regexp.MustCompile(`(?m)^\s*at\s+\S+\s+\([^)]+:\d+:\d+\)\s*$`)
)

// ExtractCodeReferences pulls the prompt's fenced code blocks, in order,
// for use in the comprehensive variant's "참조 코드" section.
func ExtractCodeReferences(text string) []string {
	return classifier.ExtractCodeBlocks(text)
}

// ExtractErrorReferences pulls error-message lines and stack frames out of
// the prompt body (outside code fences, which ExtractCodeReferences already
// covers), for the comprehensive variant's "참조 에러" section.
func ExtractErrorReferences(text string) []string {
	body := stripCodeFences(text)

	seen := make(map[string]bool)
	var out []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		if errorLineRe.MatchString(trimmed) || stackFrameRe.MatchString(trimmed) {
			seen[trimmed] = true
			out = append(out, trimmed)
		}
	}
	return out
}

func stripCodeFences(text string) string {
	return codeFenceSplitRe.ReplaceAllString(text, "")
}

// StripReferencedContent removes fenced code blocks and error/stack-frame
// lines from text, so a section that already extracts those separately
// (the comprehensive variant's 참조 코드/참조 에러 sections) does not also
// carry them inline in the body it renders alongside.
func StripReferencedContent(text string) string {
	body := stripCodeFences(text)

	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if errorLineRe.MatchString(trimmed) || stackFrameRe.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}

	out := whitespaceRe.ReplaceAllString(strings.Join(kept, "\n"), " ")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
