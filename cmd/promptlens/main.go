// Package main implements the promptlens CLI - a local prompt-quality
// analyzer and rewriter.
//
// This file is the entry point and command registration hub; subcommands
// are split across cmd_*.go files.
//
// # File Index
//   - main.go        - entry point, rootCmd, global flags, init()
//   - cmd_analyze.go - analyzeCmd, runAnalyze()
//   - cmd_history.go - historyCmd, historyRecentCmd, historyStatsCmd,
//     historyPatternsCmd, historyTipsCmd
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philokalos/promptlens/internal/config"
	"github.com/philokalos/promptlens/internal/logging"
)

var (
	verbose    bool
	workspace  string
	cfgPath    string
	appConfig  *config.Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "promptlens",
	Short: "promptlens - local prompt quality analyzer and rewriter",
	Long: `promptlens scores prompts against the GOLDEN framework (Goal, Output,
Limits, Data, Evaluation, Next), generates rewrite suggestions, and tracks
quality trends across projects over time.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		dataDir := filepath.Join(ws, ".promptlens")
		if err := logging.Initialize(dataDir); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}

		path := cfgPath
		if path == "" {
			path = filepath.Join(dataDir, "config.yaml")
		}
		appConfig, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if appConfig.Logging.DebugMode {
			if err := logging.EnableDebug(dataDir, appConfig.Logging.Level); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to enable debug logging: %v\n", err)
			}
		}
		if appConfig.History.DatabasePath == "" || appConfig.History.DatabasePath == "data/promptlens.db" {
			appConfig.History.DatabasePath = filepath.Join(dataDir, "promptlens.db")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config.yaml (default: <workspace>/.promptlens/config.yaml)")

	historyCmd.AddCommand(historyRecentCmd, historyStatsCmd, historyPatternsCmd, historyTipsCmd)

	rootCmd.AddCommand(analyzeCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
