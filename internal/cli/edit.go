package cli

import (
	"latexify/internal/common"
	"latexify/internal/errors"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Rewrite the working document with a natural-language instruction",
	Long: `Send the working LaTeX document and an instruction to the backend, which
rewrites the document wholesale, then recompile.

With -m the instruction is given inline. Without -m the instruction staged by
'latexify analyze --apply-all' (or --apply) is consumed. With --file the
working document is replaced directly from a LaTeX file instead, marking the
compiled PDF stale until the next recompile; no backend call is made.

A failed instruction leaves the working document untouched.`,
	PreRunE: validateFormatFlag(&editConfig),
	RunE:    runEdit,
}

var (
	editConfig      common.CommandConfig
	editInstruction string
	editFile        string
)

func init() {
	editCmd.Flags().StringVarP(&editInstruction, "message", "m", "", "Edit instruction")
	editCmd.Flags().StringVar(&editFile, "file", "", "Replace the working LaTeX from this file (direct edit)")
	editCmd.Flags().StringVar(&editConfig.OutputFormat, "format", "", "Status output format: json, text, or markdown")
	editCmd.MarkFlagsMutuallyExclusive("message", "file")
}

func runEdit(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	if editFile != "" {
		return runDirectEdit(cmd, app)
	}

	instruction := editInstruction
	usedStaged := false
	if instruction == "" {
		instruction = app.session.PendingInstruction
		usedStaged = instruction != ""
	}
	if instruction == "" {
		return errors.NewValidationError(errors.ErrCodeEmptyInstruction,
			"Provide an instruction with -m or stage one with 'latexify analyze --apply-all'", nil)
	}

	editErr := app.engine.EditInstruction(cmd.Context(), instruction)
	if editErr == nil && usedStaged {
		app.session.PendingInstruction = ""
	}

	if err := app.saveSession(); err != nil {
		return err
	}
	if editErr != nil {
		return editErr
	}

	return app.printSummary(editConfig)
}

func runDirectEdit(cmd *cobra.Command, app *app) error {
	fileProcessor := common.NewFileProcessor(app.logger)
	latex, err := fileProcessor.ReadFile(editFile)
	if err != nil {
		return err
	}

	if err := app.engine.DirectEdit(latex); err != nil {
		return err
	}

	if err := app.saveSession(); err != nil {
		return err
	}

	return app.printSummary(editConfig)
}
