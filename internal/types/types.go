// Package types holds the data model shared by every promptlens component:
// the prompt, its derived features, classification, GOLDEN scores, rewrite
// variants, session context, and the history records the repository persists.
package types

import "time"

// LanguageHint is the coarse script detected in a prompt.
type LanguageHint string

const (
	LanguageKorean  LanguageHint = "ko"
	LanguageEnglish LanguageHint = "en"
	LanguageMixed   LanguageHint = "mixed"
)

// Complexity buckets a prompt by word count and structural richness.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Intent is the inferred communicative purpose of a prompt.
type Intent string

const (
	IntentCommand       Intent = "command"
	IntentQuestion      Intent = "question"
	IntentInstruction   Intent = "instruction"
	IntentFeedback      Intent = "feedback"
	IntentContext       Intent = "context"
	IntentClarification Intent = "clarification"
	IntentUnknown       Intent = "unknown"
)

// TaskCategory is the inferred kind of development work a prompt targets.
type TaskCategory string

const (
	CategoryCodeGeneration TaskCategory = "code-generation"
	CategoryCodeReview     TaskCategory = "code-review"
	CategoryBugFix         TaskCategory = "bug-fix"
	CategoryRefactoring    TaskCategory = "refactoring"
	CategoryExplanation    TaskCategory = "explanation"
	CategoryDocumentation  TaskCategory = "documentation"
	CategoryTesting        TaskCategory = "testing"
	CategoryArchitecture   TaskCategory = "architecture"
	CategoryDeployment     TaskCategory = "deployment"
	CategoryDataAnalysis   TaskCategory = "data-analysis"
	CategoryGeneral        TaskCategory = "general"
	CategoryUnknown        TaskCategory = "unknown"
)

// Grade is the letter grade derived from an overall score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Severity ranks an Issue by how much it hurts prompt quality.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Dimension identifies one of the six GOLDEN axes.
type Dimension string

const (
	DimensionGoal       Dimension = "goal"
	DimensionOutput     Dimension = "output"
	DimensionLimits     Dimension = "limits"
	DimensionData       Dimension = "data"
	DimensionEvaluation Dimension = "evaluation"
	DimensionNext       Dimension = "next"
)

// AllDimensions is the fixed six, in the canonical GOLDEN order.
var AllDimensions = [6]Dimension{
	DimensionGoal, DimensionOutput, DimensionLimits,
	DimensionData, DimensionEvaluation, DimensionNext,
}

// VariantKind distinguishes the four shapes of rewrite a prompt can receive.
type VariantKind string

const (
	VariantConservative  VariantKind = "conservative"
	VariantBalanced      VariantKind = "balanced"
	VariantComprehensive VariantKind = "comprehensive"
	VariantAI            VariantKind = "ai"
)

// RecommendationKind distinguishes the four recommendation shapes the
// recommendation engine can emit. Modeled as a tagged union
// instead of the loosely-typed map the original design implies.
type RecommendationKind string

const (
	RecommendationWeakness    RecommendationKind = "weakness"
	RecommendationPattern     RecommendationKind = "pattern"
	RecommendationReference   RecommendationKind = "reference"
	RecommendationImprovement RecommendationKind = "improvement"
)

// Priority orders recommendations for display; High sorts before Medium
// before Low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityRank gives Priority a total order for stable sorting.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Prompt is the raw, immutable input captured from the user.
type Prompt struct {
	Text        string
	SourceApp   string
	ProjectPath string
	WindowTitle string
	CapturedAt  time.Time
}

// Features are pure derivations of a Prompt's text.
type Features struct {
	LanguageHint       LanguageHint
	HasCodeBlock       bool
	HasFilePath        bool
	HasURL             bool
	WordCount          int
	Length             int
	HasQuestionMark    bool
	HasExclamationMark bool
	Complexity         Complexity
}

// Classification is the classifier's verdict on a prompt.
type Classification struct {
	Intent             Intent
	IntentConfidence   float64
	TaskCategory       TaskCategory
	CategoryConfidence float64
	MatchedKeywords    []string
}

// GoldenScore holds the six GOLDEN dimension scores plus their mean.
type GoldenScore struct {
	Goal       float64
	Output     float64
	Limits     float64
	Data       float64
	Evaluation float64
	Next       float64
	Total      float64
}

// Get returns the score for a named dimension.
func (g GoldenScore) Get(d Dimension) float64 {
	switch d {
	case DimensionGoal:
		return g.Goal
	case DimensionOutput:
		return g.Output
	case DimensionLimits:
		return g.Limits
	case DimensionData:
		return g.Data
	case DimensionEvaluation:
		return g.Evaluation
	case DimensionNext:
		return g.Next
	default:
		return 0
	}
}

// Recompute sets Total to the mean of the six dimensions. Every mutation of
// a GoldenScore must call this before the score is considered valid.
func (g *GoldenScore) Recompute() {
	g.Total = (g.Goal + g.Output + g.Limits + g.Data + g.Evaluation + g.Next) / 6.0
}

// Issue is a single quality complaint surfaced by the GOLDEN evaluator.
type Issue struct {
	Severity   Severity
	Category   Dimension
	Message    string
	Suggestion string
}

// Variant is one rewritten candidate of the original prompt.
type Variant struct {
	Kind              VariantKind
	Text              string
	KeyChanges        []string
	Confidence        float64
	AIExplanation     string
	OriginTemperature float64
	NeedsSetup        bool
}

// LastExchange summarizes the most recent assistant/user turn at capture
// time, used by the balanced rewriter variant.
type LastExchange struct {
	Summary       string
	ModifiedFiles []string
}

// SessionContext is a capture-time snapshot of the user's workspace.
type SessionContext struct {
	ProjectPath  string
	ProjectName  string
	IDEName      string
	TechStack    []string
	CurrentTask  string
	RecentFiles  []string
	RecentTools  []string
	GitBranch    string
	LastExchange *LastExchange
}

// Recommendation is a single prioritized suggestion attached to an
// enrichment. Which of the Dimension/ExamplePrompt/Gap fields are set
// depends on Kind.
type Recommendation struct {
	Kind          RecommendationKind
	Priority      Priority
	Title         string
	Message       string
	Dimension     Dimension
	Score         float64
	ExamplePrompt string
	Gap           float64
}

// Comparison contrasts a single analysis against a project's historical
// average.
type Comparison struct {
	ScoreDiff         float64
	Message           string
	BetterThanAverage bool
}

// Enrichment is the history-aware verdict attached to an analysis.
type Enrichment struct {
	Recommendations []Recommendation
	Comparison      *Comparison
}

// AnalysisResult is the full payload returned to the capture layer.
type AnalysisResult struct {
	ID             string
	Prompt         Prompt
	Features       Features
	Classification Classification
	Golden         GoldenScore
	Grade          Grade
	Issues         []Issue
	Variants       []Variant
	SessionContext *SessionContext
	Enrichment     *Enrichment
	Persisted      bool
	Warnings       []string
	AnalyzedAt     time.Time
}

// PromptHistoryRecord is a persisted analysis row.
type PromptHistoryRecord struct {
	ID             int64
	PromptText     string
	OverallScore   int
	Grade          Grade
	GoldenGoal     int
	GoldenOutput   int
	GoldenLimits   int
	GoldenData     int
	GoldenEval     int
	GoldenNext     int
	IssuesJSON     string
	ImprovedPrompt string
	SourceApp      string
	ProjectPath    string
	Intent         string
	Category       string
	AnalyzedAt     time.Time
}

// GradeForScore maps an overall 0-100 score to a letter grade.
func GradeForScore(score100 float64) Grade {
	switch {
	case score100 >= 90:
		return GradeA
	case score100 >= 75:
		return GradeB
	case score100 >= 60:
		return GradeC
	case score100 >= 45:
		return GradeD
	default:
		return GradeF
	}
}
