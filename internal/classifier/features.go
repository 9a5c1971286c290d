// Package classifier infers intent and task-category from bilingual
// (Korean + English) prompt text. classify(text) is deterministic and pure.
package classifier

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/philokalos/promptlens/internal/types"
)

var (
	codeFenceRe = regexp.MustCompile("(?s)```.*?```")
	filePathRe  = regexp.MustCompile(`(?:^|[\s"'` + "`" + `(])(?:[A-Za-z]:)?(?:\.{1,2}/)?(?:[\w.\-]+/)+[\w.\-]+\.[A-Za-z0-9]{1,8}\b`)
	urlRe       = regexp.MustCompile(`https?://\S+`)
	wordSplitRe = regexp.MustCompile(`\s+`)
)

// ExtractFeatures derives Features from raw prompt text. Pure function of
// the text.
func ExtractFeatures(text string) types.Features {
	trimmed := strings.TrimSpace(text)

	hasCode := codeFenceRe.MatchString(text)
	hasPath := filePathRe.MatchString(text)
	hasURL := urlRe.MatchString(text)
	hasQ := strings.ContainsRune(text, '?') || strings.ContainsRune(text, '？')
	hasBang := strings.ContainsRune(text, '!') || strings.ContainsRune(text, '！')

	words := 0
	if trimmed != "" {
		words = len(wordSplitRe.Split(trimmed, -1))
	}

	f := types.Features{
		LanguageHint:       languageHint(text),
		HasCodeBlock:       hasCode,
		HasFilePath:        hasPath,
		HasURL:             hasURL,
		WordCount:          words,
		Length:             len([]rune(text)),
		HasQuestionMark:    hasQ,
		HasExclamationMark: hasBang,
	}
	f.Complexity = complexityFor(words, hasCode)
	return f
}

// languageHint classifies text by the proportion of Hangul characters
// among letter runes.
func languageHint(text string) types.LanguageHint {
	var hangul, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Hangul, r) {
			hangul++
		}
	}
	if letters == 0 {
		return types.LanguageEnglish
	}
	ratio := float64(hangul) / float64(letters)
	switch {
	case ratio >= 0.9:
		return types.LanguageKorean
	case ratio <= 0.1:
		return types.LanguageEnglish
	default:
		return types.LanguageMixed
	}
}

// complexityFor buckets word count into simple/moderate/complex, extending
// the moderate ceiling when a code block is present.
func complexityFor(wordCount int, hasCodeBlock bool) types.Complexity {
	if wordCount < 10 {
		return types.ComplexitySimple
	}
	moderateCeiling := 50
	if hasCodeBlock {
		moderateCeiling = 100
	}
	if wordCount < moderateCeiling {
		return types.ComplexityModerate
	}
	return types.ComplexityComplex
}

// ExtractCodeBlocks returns the contents of every fenced code block, fence
// markers stripped, in order of appearance. Shared with the rule rewriter's
// code extraction.
func ExtractCodeBlocks(text string) []string {
	matches := codeFenceRe.FindAllString(text, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		inner := strings.TrimPrefix(m, "```")
		inner = strings.TrimSuffix(inner, "```")
		// Drop a leading language tag line, e.g. "go\nfunc main..."
		if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
			tag := strings.TrimSpace(inner[:nl])
			if tag != "" && !strings.ContainsAny(tag, " \t") && len(tag) < 20 {
				inner = inner[nl+1:]
			}
		}
		blocks = append(blocks, strings.TrimSpace(inner))
	}
	return blocks
}
