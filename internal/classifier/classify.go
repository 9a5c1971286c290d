package classifier

import (
	"sort"
	"strings"

	"github.com/philokalos/promptlens/internal/logging"
	"github.com/philokalos/promptlens/internal/types"
)

// questionMarkBonus is added to the question intent's raw score when a
// question mark is present.
const questionMarkBonus = 1.0

// positionMultiplier boosts a keyword match found in the first quarter of
// the text.
const positionMultiplier = 1.5

// intentNormalization and categoryNormalization scale raw keyword scores
// into the [0, 0.95] confidence band.
const intentNormalization = 2.5
const categoryNormalization = 2.0

// Classify infers intent and task category from prompt text. Deterministic
// and pure: identical input always yields byte-identical output.
func Classify(text string) types.Classification {
	timer := logging.StartTimer(logging.CategoryClassifier, "Classify")
	defer timer.Stop()

	lower := strings.ToLower(text)
	firstQuarter := len(lower) / 4

	intentScores, intentMatches := scoreKeywords(lower, firstQuarter, intentTable())
	if strings.ContainsRune(text, '?') || strings.ContainsRune(text, '？') {
		intentScores[string(types.IntentQuestion)] += questionMarkBonus
	}

	categoryScores, categoryMatches := scoreKeywords(lower, firstQuarter, categoryTable())

	intent, intentConf := bestIntent(intentScores)
	if len(intentMatches) == 0 {
		intent, intentConf = fallbackIntent(text)
	}

	category, categoryConf := bestCategory(categoryScores)
	if category == "" {
		if strings.TrimSpace(text) == "" {
			category = types.CategoryUnknown
			categoryConf = 0.2
		} else {
			category = types.CategoryGeneral
			categoryConf = 0.3
		}
	}

	matched := append([]string{}, intentMatches...)
	matched = append(matched, categoryMatches...)
	sort.Strings(matched)

	logging.ClassifierDebug("classified intent=%s(%.2f) category=%s(%.2f) matches=%d",
		intent, intentConf, category, categoryConf, len(matched))

	return types.Classification{
		Intent:             intent,
		IntentConfidence:   intentConf,
		TaskCategory:       category,
		CategoryConfidence: categoryConf,
		MatchedKeywords:    matched,
	}
}

func intentTable() map[string][]keyword {
	out := make(map[string][]keyword, len(intentKeywords))
	for k, v := range intentKeywords {
		out[string(k)] = v
	}
	return out
}

func categoryTable() map[string][]keyword {
	out := make(map[string][]keyword, len(categoryKeywords))
	for k, v := range categoryKeywords {
		out[string(k)] = v
	}
	return out
}

// scoreKeywords scans lower-cased text against every key's keyword table
// and returns a raw score per key plus the flat list of matched keyword
// strings.
func scoreKeywords(lower string, firstQuarter int, table map[string][]keyword) (map[string]float64, []string) {
	scores := make(map[string]float64, len(table))
	var matched []string

	for key, kws := range table {
		var total float64
		for _, kw := range kws {
			idx := strings.Index(lower, kw.Text)
			if idx < 0 {
				continue
			}
			weight := kw.Weight
			if idx < firstQuarter {
				weight *= positionMultiplier
			}
			total += weight
			matched = append(matched, kw.Text)
		}
		scores[key] = total
	}
	return scores, matched
}

func bestIntent(scores map[string]float64) (types.Intent, float64) {
	best := ""
	var bestScore float64
	for key, score := range scores {
		if score <= 0 {
			continue
		}
		if best == "" || score > bestScore || (score == bestScore && key < best) {
			best = key
			bestScore = score
		}
	}
	if best == "" {
		return "", 0
	}
	conf := bestScore / intentNormalization
	if conf > 0.95 {
		conf = 0.95
	}
	return types.Intent(best), conf
}

func bestCategory(scores map[string]float64) (types.TaskCategory, float64) {
	best := ""
	var bestScore float64
	for key, score := range scores {
		if score <= 0 {
			continue
		}
		if best == "" || score > bestScore || (score == bestScore && key < best) {
			best = key
			bestScore = score
		}
	}
	if best == "" {
		return "", 0
	}
	conf := bestScore / categoryNormalization
	if conf > 0.95 {
		conf = 0.95
	}
	return types.TaskCategory(best), conf
}

// fallbackIntent applies an ordered fallback chain when no keyword in any
// intent table matched.
func fallbackIntent(text string) (types.Intent, float64) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.IntentUnknown, 0.2
	}
	if strings.ContainsRune(text, '?') || strings.ContainsRune(text, '？') {
		return types.IntentQuestion, 0.6
	}
	f := ExtractFeatures(text)
	if f.Complexity != types.ComplexitySimple {
		return types.IntentInstruction, 0.45
	}
	return types.IntentUnknown, 0.4
}
