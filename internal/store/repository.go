package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/philokalos/promptlens/internal/logging"
	"github.com/philokalos/promptlens/internal/types"
)

// SchemaVersion returns the most recently recorded schema version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schemaVersionOf(s.db)
}

// SaveAnalysis atomically inserts a prompt_history row and bumps the
// personal_tips frequency for every weak GOLDEN dimension, in a single
// transaction.
func (s *Store) SaveAnalysis(ctx context.Context, result *types.AnalysisResult, weaknessThreshold100 int) (int64, error) {
	timer := logging.StartTimer(logging.CategoryStore, "SaveAnalysis")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	issuesJSON, err := json.Marshal(result.Issues)
	if err != nil {
		return 0, fmt.Errorf("marshal issues: %w", err)
	}

	overall := int(math.Round(result.Golden.Total * 100))
	res, err := tx.ExecContext(ctx, `
		INSERT INTO prompt_history (
			prompt_text, overall_score, grade,
			golden_goal, golden_output, golden_limits, golden_data, golden_eval, golden_next,
			issues_json, improved_prompt, source_app, project_path, intent, category, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Prompt.Text,
		overall,
		string(result.Grade),
		int(math.Round(result.Golden.Goal*100)),
		int(math.Round(result.Golden.Output*100)),
		int(math.Round(result.Golden.Limits*100)),
		int(math.Round(result.Golden.Data*100)),
		int(math.Round(result.Golden.Evaluation*100)),
		int(math.Round(result.Golden.Next*100)),
		string(issuesJSON),
		bestVariantText(result.Variants),
		result.Prompt.SourceApp,
		result.Prompt.ProjectPath,
		string(result.Classification.Intent),
		string(result.Classification.TaskCategory),
		result.AnalyzedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert prompt_history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	if err := upsertPersonalTip(ctx, tx, result.Golden, weaknessThreshold100); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return id, nil
}

func bestVariantText(variants []types.Variant) string {
	var best string
	var bestConf float64
	for _, v := range variants {
		if v.NeedsSetup || v.Text == "" {
			continue
		}
		if best == "" || v.Confidence > bestConf {
			best, bestConf = v.Text, v.Confidence
		}
	}
	return best
}

// upsertPersonalTip records one row per GOLDEN dimension, globally across
// all projects: every dimension that falls below threshold100 in this
// analysis has its frequency bumped and last_seen_at refreshed.
func upsertPersonalTip(ctx context.Context, tx *sql.Tx, score types.GoldenScore, threshold100 int) error {
	for _, d := range types.AllDimensions {
		if int(math.Round(score.Get(d)*100)) >= threshold100 {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO personal_tips (weakness_type, frequency, last_seen_at)
			VALUES (?, 1, CURRENT_TIMESTAMP)
			ON CONFLICT(weakness_type) DO UPDATE SET
				frequency = frequency + 1,
				last_seen_at = CURRENT_TIMESTAMP`,
			string(d),
		)
		if err != nil {
			return fmt.Errorf("upsert personal_tips: %w", err)
		}
	}
	return nil
}

// PersonalTip is one weakness dimension's recurrence across all analyzed
// projects.
type PersonalTip struct {
	WeaknessType string
	Frequency    int
	LastSeenAt   string
	TipText      string
}

// PersonalTips returns every recorded weakness dimension, most frequent
// first.
func (s *Store) PersonalTips(ctx context.Context) ([]PersonalTip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT weakness_type, frequency, last_seen_at
		FROM personal_tips
		ORDER BY frequency DESC, last_seen_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query personal_tips: %w", err)
	}
	defer rows.Close()

	var out []PersonalTip
	for rows.Next() {
		var p PersonalTip
		if err := rows.Scan(&p.WeaknessType, &p.Frequency, &p.LastSeenAt); err != nil {
			return nil, fmt.Errorf("scan personal_tips row: %w", err)
		}
		p.TipText = tipTextFor(types.Dimension(p.WeaknessType))
		out = append(out, p)
	}
	return out, rows.Err()
}

func tipTextFor(dim types.Dimension) string {
	switch dim {
	case types.DimensionGoal:
		return "목표를 더 구체적으로 적어보세요."
	case types.DimensionOutput:
		return "원하는 출력 형식을 항상 명시해보세요."
	case types.DimensionLimits:
		return "제약 조건을 함께 적으면 결과가 더 정확해집니다."
	case types.DimensionData:
		return "관련 코드나 에러 메시지를 붙여넣어 보세요."
	case types.DimensionEvaluation:
		return "성공 기준을 명시하면 결과 검증이 쉬워집니다."
	default:
		return "완료 후 다음 단계를 함께 적어보세요."
	}
}

func scanHistoryRows(rows *sql.Rows) ([]types.PromptHistoryRecord, error) {
	defer rows.Close()
	var out []types.PromptHistoryRecord
	for rows.Next() {
		var r types.PromptHistoryRecord
		if err := rows.Scan(
			&r.ID, &r.PromptText, &r.OverallScore, &r.Grade,
			&r.GoldenGoal, &r.GoldenOutput, &r.GoldenLimits, &r.GoldenData, &r.GoldenEval, &r.GoldenNext,
			&r.IssuesJSON, &r.ImprovedPrompt, &r.SourceApp, &r.ProjectPath, &r.Intent, &r.Category, &r.AnalyzedAt,
		); err != nil {
			return nil, fmt.Errorf("scan prompt_history row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const historyColumns = `
	id, prompt_text, overall_score, grade,
	golden_goal, golden_output, golden_limits, golden_data, golden_eval, golden_next,
	issues_json, improved_prompt, source_app, project_path, intent, category, analyzed_at`

// RecentRecords returns the n most recently analyzed prompts, newest first.
func (s *Store) RecentRecords(ctx context.Context, n int) ([]types.PromptHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+historyColumns+`
		FROM prompt_history ORDER BY analyzed_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent records: %w", err)
	}
	return scanHistoryRows(rows)
}

// DailyTrendPoint is one day's average score and sample count.
type DailyTrendPoint struct {
	Date     string
	AvgScore float64
	Count    int
}

// DailyTrend returns the daily average score for a project over the last
// `days` days.
func (s *Store) DailyTrend(ctx context.Context, projectPath string, days int) ([]DailyTrendPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date(analyzed_at) AS d, AVG(overall_score), COUNT(*)
		FROM prompt_history
		WHERE project_path = ? AND date(analyzed_at) >= date('now', printf('-%d day', ?))
		GROUP BY d
		ORDER BY d ASC`, projectPath, days)
	if err != nil {
		return nil, fmt.Errorf("query daily trend: %w", err)
	}
	defer rows.Close()

	var out []DailyTrendPoint
	for rows.Next() {
		var p DailyTrendPoint
		if err := rows.Scan(&p.Date, &p.AvgScore, &p.Count); err != nil {
			return nil, fmt.Errorf("scan daily trend row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DimensionAverages returns the mean GOLDEN score across a project's
// history.
func (s *Store) DimensionAverages(ctx context.Context, projectPath string) (types.GoldenScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var score types.GoldenScore
	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(golden_goal), AVG(golden_output), AVG(golden_limits),
		       AVG(golden_data), AVG(golden_eval), AVG(golden_next)
		FROM prompt_history WHERE project_path = ?`, projectPath,
	).Scan(&score.Goal, &score.Output, &score.Limits, &score.Data, &score.Evaluation, &score.Next)
	if err != nil {
		return types.GoldenScore{}, fmt.Errorf("query dimension averages: %w", err)
	}
	score.Goal /= 100
	score.Output /= 100
	score.Limits /= 100
	score.Data /= 100
	score.Evaluation /= 100
	score.Next /= 100
	score.Recompute()
	return score, nil
}

// ProjectAverage summarizes one project's analyzed prompts.
type ProjectAverage struct {
	ProjectPath   string
	AvgScore      float64
	Count         int
	WeaknessCount int
}

// ProjectAverages returns every project's average score and weakness count,
// worst average first.
func (s *Store) ProjectAverages(ctx context.Context, weaknessThreshold100 int) ([]ProjectAverage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT project_path, AVG(overall_score), COUNT(*),
		       SUM(CASE WHEN overall_score < ? THEN 1 ELSE 0 END)
		FROM prompt_history
		WHERE project_path != ''
		GROUP BY project_path
		ORDER BY AVG(overall_score) ASC`, weaknessThreshold100)
	if err != nil {
		return nil, fmt.Errorf("query project averages: %w", err)
	}
	defer rows.Close()

	var out []ProjectAverage
	for rows.Next() {
		var p ProjectAverage
		if err := rows.Scan(&p.ProjectPath, &p.AvgScore, &p.Count, &p.WeaknessCount); err != nil {
			return nil, fmt.Errorf("scan project average row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// HighScoringExamples returns the best-scoring prompts in a category, for
// use as reference examples.
func (s *Store) HighScoringExamples(ctx context.Context, category string, limit int) ([]types.PromptHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+historyColumns+`
		FROM prompt_history
		WHERE category = ? AND overall_score >= 85
		ORDER BY overall_score DESC, analyzed_at DESC
		LIMIT ?`, category, limit)
	if err != nil {
		return nil, fmt.Errorf("query high scoring examples: %w", err)
	}
	return scanHistoryRows(rows)
}

// SimilarPrompts returns the most recent prompts in the same category.
func (s *Store) SimilarPrompts(ctx context.Context, category string, limit int) ([]types.PromptHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+historyColumns+`
		FROM prompt_history
		WHERE category = ?
		ORDER BY analyzed_at DESC
		LIMIT ?`, category, limit)
	if err != nil {
		return nil, fmt.Errorf("query similar prompts: %w", err)
	}
	return scanHistoryRows(rows)
}

// WeeklyStat is one Monday-start calendar week's average score plus the
// delta from the previous week, computed with a LAG window function.
type WeeklyStat struct {
	WeekStart     string
	AvgScore      float64
	Count         int
	DeltaFromPrev float64
}

// WeeklyStats returns the last 12 weeks of average scores, each annotated
// with its change from the prior week.
func (s *Store) WeeklyStats(ctx context.Context) ([]WeeklyStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		WITH weekly AS (
			SELECT strftime('%Y-%W', analyzed_at) AS week,
			       date(analyzed_at, '-6 days', 'weekday 1') AS week_start,
			       AVG(overall_score) AS avg_score,
			       COUNT(*) AS n
			FROM prompt_history
			GROUP BY week
		)
		SELECT week_start, avg_score, n,
		       avg_score - LAG(avg_score) OVER (ORDER BY week_start) AS delta
		FROM weekly
		ORDER BY week_start DESC
		LIMIT 12`)
	if err != nil {
		return nil, fmt.Errorf("query weekly stats: %w", err)
	}
	defer rows.Close()

	var out []WeeklyStat
	for rows.Next() {
		var w WeeklyStat
		var delta sql.NullFloat64
		if err := rows.Scan(&w.WeekStart, &w.AvgScore, &w.Count, &delta); err != nil {
			return nil, fmt.Errorf("scan weekly stat row: %w", err)
		}
		if delta.Valid {
			w.DeltaFromPrev = delta.Float64
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// MonthlyStat is one calendar month's average score and grade breakdown.
type MonthlyStat struct {
	Month             string
	AvgScore          float64
	Count             int
	GradeDistribution map[string]int
}

// MonthlyStats returns the current calendar month's stats, including how
// many prompts fell into each letter grade.
func (s *Store) MonthlyStats(ctx context.Context) (MonthlyStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	month := ""
	var avg float64
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT strftime('%Y-%m', 'now'), COALESCE(AVG(overall_score), 0), COUNT(*)
		FROM prompt_history
		WHERE strftime('%Y-%m', analyzed_at) = strftime('%Y-%m', 'now')`,
	).Scan(&month, &avg, &count)
	if err != nil {
		return MonthlyStat{}, fmt.Errorf("query monthly stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT grade, COUNT(*)
		FROM prompt_history
		WHERE strftime('%Y-%m', analyzed_at) = strftime('%Y-%m', 'now')
		GROUP BY grade`)
	if err != nil {
		return MonthlyStat{}, fmt.Errorf("query grade distribution: %w", err)
	}
	defer rows.Close()

	dist := make(map[string]int)
	for rows.Next() {
		var grade string
		var n int
		if err := rows.Scan(&grade, &n); err != nil {
			return MonthlyStat{}, fmt.Errorf("scan grade distribution row: %w", err)
		}
		dist[grade] = n
	}
	if err := rows.Err(); err != nil {
		return MonthlyStat{}, err
	}

	return MonthlyStat{Month: month, AvgScore: avg, Count: count, GradeDistribution: dist}, nil
}

// ImprovementResult summarizes a project's improvement-streak analysis.
type ImprovementResult struct {
	CurrentStreak  int
	LongestStreak  int
	OverallDelta   float64
	SampleSize     int
}

// ImprovementAnalysis detects consecutive score-improving streaks for a
// project using a bounded recursive CTE.
func (s *Store) ImprovementAnalysis(ctx context.Context, projectPath string) (ImprovementResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		WITH ordered AS (
			SELECT overall_score, analyzed_at,
			       ROW_NUMBER() OVER (ORDER BY analyzed_at ASC) AS rn
			FROM prompt_history
			WHERE project_path = ?
			ORDER BY analyzed_at ASC
			LIMIT 100
		),
		streaks(rn, score, streak_len) AS (
			SELECT rn, overall_score, 1
			FROM ordered WHERE rn = 1
			UNION ALL
			SELECT o.rn, o.overall_score,
			       CASE WHEN o.overall_score >= s.score THEN s.streak_len + 1 ELSE 1 END
			FROM ordered o
			JOIN streaks s ON o.rn = s.rn + 1
		)
		SELECT rn, score, streak_len FROM streaks ORDER BY rn ASC`, projectPath)
	if err != nil {
		return ImprovementResult{}, fmt.Errorf("query improvement streaks: %w", err)
	}
	defer rows.Close()

	var scores []int
	var longest, current int
	for rows.Next() {
		var rn, score, streakLen int
		if err := rows.Scan(&rn, &score, &streakLen); err != nil {
			return ImprovementResult{}, fmt.Errorf("scan improvement streak row: %w", err)
		}
		scores = append(scores, score)
		current = streakLen
		if streakLen > longest {
			longest = streakLen
		}
	}
	if err := rows.Err(); err != nil {
		return ImprovementResult{}, err
	}

	result := ImprovementResult{CurrentStreak: current, LongestStreak: longest, SampleSize: len(scores)}
	if len(scores) >= 2 {
		result.OverallDelta = float64(scores[len(scores)-1]-scores[0]) / float64(len(scores)-1)
	}
	return result, nil
}

// IssueTrend classifies whether a GOLDEN dimension's average score is
// improving, worsening, or stable over a project's recent history.
type IssueTrend struct {
	Dimension types.Dimension
	Direction string // "improving", "worsening", "stable"
	RecentAvg float64
	PriorAvg  float64
}

// IssuePatternTrend compares each dimension's average score in the most
// recent half of a project's history against the earlier half.
func (s *Store) IssuePatternTrend(ctx context.Context, projectPath string) ([]IssueTrend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT golden_goal, golden_output, golden_limits, golden_data, golden_eval, golden_next
		FROM prompt_history WHERE project_path = ?
		ORDER BY analyzed_at ASC`, projectPath)
	if err != nil {
		return nil, fmt.Errorf("query issue pattern trend: %w", err)
	}
	defer rows.Close()

	var records [][6]int
	for rows.Next() {
		var r [6]int
		if err := rows.Scan(&r[0], &r[1], &r[2], &r[3], &r[4], &r[5]); err != nil {
			return nil, fmt.Errorf("scan issue pattern row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	mid := len(records) / 2
	trends := make([]IssueTrend, 6)
	for i, dim := range types.AllDimensions {
		prior := avgColumn(records[:mid], i)
		recent := avgColumn(records[mid:], i)
		trends[i] = IssueTrend{
			Dimension: dim,
			PriorAvg:  prior,
			RecentAvg: recent,
			Direction: trendDirection(prior, recent),
		}
	}
	return trends, nil
}

func avgColumn(records [][6]int, col int) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += r[col]
	}
	return float64(sum) / float64(len(records))
}

func trendDirection(prior, recent float64) string {
	const noise = 2.0
	switch {
	case recent-prior > noise:
		return "improving"
	case prior-recent > noise:
		return "worsening"
	default:
		return "stable"
	}
}

// PredictedScore is a naive linear forecast of a project's next score, with
// a confidence band derived from sample size and score variance.
type PredictedScore struct {
	Predicted  float64
	Confidence string // "low", "medium", "high"
	SampleSize int
}

// PredictedScore extrapolates a project's next overall score from its
// recent trend.
func (s *Store) PredictedScore(ctx context.Context, projectPath string) (PredictedScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT overall_score FROM prompt_history
		WHERE project_path = ?
		ORDER BY analyzed_at DESC
		LIMIT 10`, projectPath)
	if err != nil {
		return PredictedScore{}, fmt.Errorf("query predicted score: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return PredictedScore{}, fmt.Errorf("scan predicted score row: %w", err)
		}
		scores = append(scores, float64(v))
	}
	if err := rows.Err(); err != nil {
		return PredictedScore{}, err
	}
	if len(scores) == 0 {
		return PredictedScore{Confidence: "low"}, nil
	}

	mean, variance := meanAndVariance(scores)
	predicted := mean
	if len(scores) >= 2 {
		// scores are newest-first; estimate a simple slope across them.
		slope := (scores[0] - scores[len(scores)-1]) / float64(len(scores)-1)
		predicted = clampScore(mean + slope)
	}

	return PredictedScore{
		Predicted:  predicted,
		Confidence: confidenceFor(len(scores), variance),
		SampleSize: len(scores),
	}, nil
}

func meanAndVariance(values []float64) (mean, variance float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, variance
}

func confidenceFor(n int, variance float64) string {
	switch {
	case n < 3:
		return "low"
	case n < 6 || variance > 400:
		return "medium"
	default:
		return "high"
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
