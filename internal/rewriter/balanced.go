package rewriter

import (
	"fmt"
	"strings"

	"github.com/philokalos/promptlens/internal/types"
)

const (
	balancedBaseConfidence    = 0.75
	balancedContextConfidence = 0.05

	balancedMaxTechStack     = 3
	balancedMaxModifiedFiles = 3
	balancedMinTaskLen       = 5
	balancedMaxTaskLen       = 80
)

// defaultGitBranches are excluded from the situation section: mentioning
// that work is happening "on main" tells the model nothing useful.
var defaultGitBranches = map[string]bool{
	"main": true, "master": true, "develop": true, "trunk": true,
}

// buildBalanced adds a "현재 상황" section built from session context (when
// available) plus patches for the two weakest GOLDEN dimensions.
func buildBalanced(clean string, score types.GoldenScore, sessionCtx *types.SessionContext) types.Variant {
	var sections []string
	var keyChanges []string

	if situation := situationSection(sessionCtx); situation != "" {
		sections = append(sections, situation)
		keyChanges = append(keyChanges, "현재 상황 추가")
	}

	for _, dim := range weakestDimensions(score, 2) {
		if score.Get(dim) >= 0.7 {
			continue
		}
		patch := patchFor(dim)
		sections = append(sections, patch)
		keyChanges = append(keyChanges, patch)
	}

	text := clean
	if len(sections) > 0 {
		text = clean + "\n\n" + strings.Join(sections, "\n")
	}

	confidence := balancedBaseConfidence
	if sessionCtx != nil {
		confidence += balancedContextConfidence
	}

	return types.Variant{
		Kind:       types.VariantBalanced,
		Text:       text,
		KeyChanges: keyChanges,
		Confidence: confidence,
	}
}

// situationSection renders the non-empty parts of a SessionContext as a
// "현재 상황" block, filtering out a CurrentTask that is empty or a generic
// placeholder.
func situationSection(ctx *types.SessionContext) string {
	if ctx == nil {
		return ""
	}

	var lines []string
	if ctx.ProjectName != "" {
		lines = append(lines, "- 프로젝트: "+ctx.ProjectName)
	}
	if stack := firstFew(ctx.TechStack, balancedMaxTechStack); len(stack) > 0 {
		lines = append(lines, "- 기술 스택: "+strings.Join(stack, ", "))
	}
	if task := filteredCurrentTask(ctx.CurrentTask); task != "" {
		lines = append(lines, "- 현재 작업: "+task)
	}
	if branch := ctx.GitBranch; branch != "" && !defaultGitBranches[strings.ToLower(branch)] {
		lines = append(lines, "- 브랜치: "+branch)
	}
	if ctx.LastExchange != nil {
		if ctx.LastExchange.Summary != "" {
			lines = append(lines, "- 직전 대화 요약: "+ctx.LastExchange.Summary)
		}
		if files := firstFew(ctx.LastExchange.ModifiedFiles, balancedMaxModifiedFiles); len(files) > 0 {
			lines = append(lines, "- 최근 수정 파일: "+strings.Join(files, ", "))
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return fmt.Sprintf("현재 상황:\n%s", strings.Join(lines, "\n"))
}

// firstFew returns at most n leading entries of items.
func firstFew(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

var genericTaskPlaceholders = map[string]bool{
	"": true, "n/a": true, "none": true, "untitled": true, "task": true,
}

// filteredCurrentTask drops placeholder and too-short task descriptions and
// truncates ones long enough to dominate the situation section.
func filteredCurrentTask(task string) string {
	trimmed := strings.TrimSpace(task)
	if genericTaskPlaceholders[strings.ToLower(trimmed)] {
		return ""
	}
	if len(trimmed) < balancedMinTaskLen {
		return ""
	}
	if len(trimmed) > balancedMaxTaskLen {
		return strings.TrimSpace(trimmed[:balancedMaxTaskLen]) + "..."
	}
	return trimmed
}
