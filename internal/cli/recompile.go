package cli

import (
	"latexify/internal/common"

	"github.com/spf13/cobra"
)

var recompileCmd = &cobra.Command{
	Use:   "recompile",
	Short: "Compile the current working document to PDF",
	Long: `Compile the session's working LaTeX document. Use this after a direct edit
to refresh a stale PDF, or to retry after a compile failure. Recompiling
unchanged source produces the same document.`,
	PreRunE: validateFormatFlag(&recompileConfig),
	RunE:    runRecompile,
}

var (
	recompileConfig common.CommandConfig
	recompilePDFOut string
)

func init() {
	recompileCmd.Flags().StringVarP(&recompilePDFOut, "output", "o", "", "Write the compiled PDF to this path")
	recompileCmd.Flags().StringVar(&recompileConfig.OutputFormat, "format", "", "Status output format: json, text, or markdown")
}

func runRecompile(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	compileErr := app.engine.Recompile(cmd.Context())

	if err := app.saveSession(); err != nil {
		return err
	}
	if compileErr != nil {
		return compileErr
	}

	if recompilePDFOut != "" {
		fileProcessor := common.NewFileProcessor(app.logger)
		if err := fileProcessor.WriteBinaryFile(recompilePDFOut, app.session.CompiledPDF); err != nil {
			return err
		}
		app.logger.Info("PDF written", "file", recompilePDFOut)
	}

	return app.printSummary(recompileConfig)
}
