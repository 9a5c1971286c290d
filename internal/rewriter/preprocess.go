// Package rewriter implements the rule-based rewriter: three deterministic
// variants (conservative, balanced, comprehensive) that target a prompt's
// weakest GOLDEN dimensions and weave in session context.
package rewriter

import (
	"regexp"
	"strings"
)

var (
	codeFenceSplitRe = regexp.MustCompile("(?s)(```.*?```)")
	greetingRe       = regexp.MustCompile(`(?i)^\s*(안녕하세요|안녕|hi|hello|hey)[,!.]?\s*`)
	fillerRe         = regexp.MustCompile(`(?i)^\s*(그래서|그니까|음|so|well|um)[,]?\s*`)
	whitespaceRe     = regexp.MustCompile(`[ \t]+`)
	blankLinesRe     = regexp.MustCompile(`\n{3,}`)
)

// Preprocess strips greeting prefixes and filler openings and collapses
// whitespace, without touching the contents of fenced code blocks.
func Preprocess(text string) string {
	segments := codeFenceSplitRe.Split(text, -1)
	fences := codeFenceSplitRe.FindAllString(text, -1)

	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(cleanSegment(seg, i == 0))
		if i < len(fences) {
			b.WriteString(fences[i])
		}
	}
	return strings.TrimSpace(b.String())
}

func cleanSegment(seg string, isFirst bool) string {
	out := seg
	if isFirst {
		for {
			trimmed := greetingRe.ReplaceAllString(out, "")
			trimmed = fillerRe.ReplaceAllString(trimmed, "")
			if trimmed == out {
				break
			}
			out = trimmed
		}
	}
	out = whitespaceRe.ReplaceAllString(out, " ")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return out
}
