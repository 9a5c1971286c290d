package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philokalos/promptlens/internal/recommend"
	"github.com/philokalos/promptlens/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect saved prompt analyses",
}

var historyRecentCmd = &cobra.Command{
	Use:   "recent [n]",
	Short: "List the most recent analyses",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryRecent,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show weekly and monthly score trends",
	RunE:  runHistoryStats,
}

var historyPatternsCmd = &cobra.Command{
	Use:   "patterns <project-path>",
	Short: "Analyze a project's recurring GOLDEN weaknesses",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryPatterns,
}

var historyTipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Show your most frequent GOLDEN weaknesses across all projects",
	RunE:  runHistoryTips,
}

func openHistoryStore() (*store.Store, error) {
	s, err := store.Open(appConfig.History.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return s, nil
}

func runHistoryRecent(cmd *cobra.Command, args []string) error {
	n := 10
	if len(args) == 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid count: %s", args[0])
		}
		n = parsed
	}

	repo, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := context.Background()
	records, err := repo.RecentRecords(ctx, n)
	if err != nil {
		return fmt.Errorf("load recent records: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No analyses recorded yet.")
		return nil
	}

	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, r := range records {
		fmt.Fprintf(out, "#%d  %s  %s  %d/100\n", r.ID, r.AnalyzedAt.Format("2006-01-02 15:04"), r.Grade, r.OverallScore)
		text := r.PromptText
		if len(text) > 70 {
			text = text[:70] + "..."
		}
		fmt.Fprintf(out, "    %s\n", text)
	}
	fmt.Fprintln(out, strings.Repeat("-", 60))
	fmt.Fprintf(out, "Showing %d of the most recent analyses.\n", len(records))
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	repo, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	weekly, err := repo.WeeklyStats(ctx)
	if err != nil {
		return fmt.Errorf("load weekly stats: %w", err)
	}
	fmt.Fprintln(out, "Weekly averages:")
	if len(weekly) == 0 {
		fmt.Fprintln(out, "  (no data yet)")
	}
	for _, w := range weekly {
		delta := ""
		if w.DeltaFromPrev != 0 {
			sign := "+"
			if w.DeltaFromPrev < 0 {
				sign = ""
			}
			delta = fmt.Sprintf(" (%s%.1f)", sign, w.DeltaFromPrev)
		}
		fmt.Fprintf(out, "  %s  avg %.1f  n=%d%s\n", w.WeekStart, w.AvgScore, w.Count, delta)
	}

	monthly, err := repo.MonthlyStats(ctx)
	if err != nil {
		return fmt.Errorf("load monthly stats: %w", err)
	}
	fmt.Fprintf(out, "\nThis month (%s): avg %.1f across %d analyses\n", monthly.Month, monthly.AvgScore, monthly.Count)
	if len(monthly.GradeDistribution) > 0 {
		fmt.Fprint(out, "  grades:")
		for _, g := range []string{"A", "B", "C", "D", "F"} {
			if count, ok := monthly.GradeDistribution[g]; ok {
				fmt.Fprintf(out, " %s=%d", g, count)
			}
		}
		fmt.Fprintln(out)
	}

	return nil
}

func runHistoryPatterns(cmd *cobra.Command, args []string) error {
	repo, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer repo.Close()

	projectPath := args[0]
	analysis, err := recommend.AnalyzeProjectPatterns(context.Background(), repo, projectPath)
	if err != nil {
		return fmt.Errorf("analyze project patterns: %w", err)
	}

	out := cmd.OutOrStdout()
	avg := analysis.DimensionAverages
	fmt.Fprintf(out, "Project: %s\n", projectPath)
	fmt.Fprintf(out, "Dimension averages (0-100): goal=%.0f output=%.0f limits=%.0f data=%.0f evaluation=%.0f next=%.0f\n",
		avg.Goal*100, avg.Output*100, avg.Limits*100, avg.Data*100, avg.Evaluation*100, avg.Next*100)

	if len(analysis.Weaknesses) == 0 {
		fmt.Fprintln(out, "No persistent weaknesses found.")
	}
	for _, w := range analysis.Weaknesses {
		fmt.Fprintf(out, "  [%s] %s: %s\n", w.Priority, w.Title, w.Message)
	}
	if analysis.Pattern != nil {
		fmt.Fprintf(out, "Pattern: %s\n", analysis.Pattern.Message)
	}
	if analysis.Improvement != nil {
		fmt.Fprintf(out, "Improvement target: %s\n", analysis.Improvement.Message)
	}
	return nil
}

func runHistoryTips(cmd *cobra.Command, args []string) error {
	repo, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer repo.Close()

	tips, err := repo.PersonalTips(context.Background())
	if err != nil {
		return fmt.Errorf("load personal tips: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(tips) == 0 {
		fmt.Fprintln(out, "No recurring weaknesses recorded yet.")
		return nil
	}

	for _, t := range tips {
		fmt.Fprintf(out, "%-12s seen %dx (last %s)\n  -> %s\n", t.WeaknessType, t.Frequency, t.LastSeenAt, t.TipText)
	}
	return nil
}
