package cli

import (
	"context"

	"latexify/internal/config"
	"latexify/internal/errors"
	"latexify/internal/observability"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}
type metricsKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}
var metricsKey = metricsKeyType{}

var sessionFlag string

var rootCmd = &cobra.Command{
	Use:   "latexify",
	Short: "Generate and refine LaTeX resumes with AI",
	Long: `Latexify is a command-line client for an AI resume generation backend.
It turns a free-form prompt into a LaTeX resume, compiles it to PDF, and
supports iterative refinement: natural-language edit instructions, direct
LaTeX edits, recompilation, and ATS compatibility analysis.

The working document lives in a session file so it survives between
invocations; pass --session to work on more than one resume at a time.`,
}

// Execute runs the CLI with config, logger, and metrics attached to the
// command context
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	ctx = context.WithValue(ctx, metricsKey, metrics)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// getMetricsFromContext returns the metrics instance, which may be empty
func getMetricsFromContext(ctx context.Context) *observability.Metrics {
	if metrics, ok := ctx.Value(metricsKey).(*observability.Metrics); ok && metrics != nil {
		return metrics
	}
	return &observability.Metrics{}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "",
		"Session file path (default from config, .latexify/session.json)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(recompileCmd)
	rootCmd.AddCommand(enhanceCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(resumesCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}
