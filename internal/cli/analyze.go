package cli

import (
	"fmt"

	"latexify/internal/common"
	"latexify/internal/errors"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run ATS compatibility analysis on the compiled resume",
	Long: `Submit the session's compiled PDF for applicant-tracking-system analysis,
optionally against a job title and company. The report lists strengths,
suggested improvements, and keywords the resume is missing.

--apply N stages improvement N as an edit instruction; --apply-all composes
one instruction covering every improvement and every missing keyword. Staged
instructions are consumed by the next 'latexify edit' without -m.`,
	PreRunE: validateFormatFlag(&analyzeConfig),
	RunE:    runAnalyze,
}

var (
	analyzeConfig   common.CommandConfig
	analyzeJobTitle string
	analyzeCompany  string
	analyzeApply    int
	analyzeApplyAll bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeJobTitle, "job-title", "", "Target job title")
	analyzeCmd.Flags().StringVar(&analyzeCompany, "company", "", "Target company")
	analyzeCmd.Flags().IntVar(&analyzeApply, "apply", 0, "Stage improvement N (1-based) as the next edit instruction")
	analyzeCmd.Flags().BoolVar(&analyzeApplyAll, "apply-all", false, "Stage all improvements and missing keywords as one edit instruction")
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.MarkFlagsMutuallyExclusive("apply", "apply-all")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	analyzer := app.analyzer()
	result, analyzeErr := analyzer.Analyze(cmd.Context(), app.session, analyzeJobTitle, analyzeCompany)
	app.metrics.RecordBusinessMetric(cmd.Context(), "analysis_run", analyzeErr == nil)
	if analyzeErr != nil {
		return analyzeErr
	}
	if result == nil {
		return nil // response discarded
	}

	if err := app.output.HandleOutput(*result, analyzeConfig); err != nil {
		return err
	}

	switch {
	case analyzeApplyAll:
		instruction := analyzer.ApplyAllSuggestions(result)
		app.session.PendingInstruction = instruction
		cmd.Println("\nStaged combined instruction; run 'latexify edit' to apply it.")
	case analyzeApply > 0:
		if analyzeApply > len(result.Improvements) {
			return errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("No improvement %d; the report has %d", analyzeApply, len(result.Improvements)), nil)
		}
		analyzer.ApplySuggestion(result.Improvements[analyzeApply-1])
		app.session.PendingInstruction = analyzer.Pending()
		cmd.Printf("\nStaged improvement %d; run 'latexify edit' to apply it.\n", analyzeApply)
	}

	return app.saveSession()
}
