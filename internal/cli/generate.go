package cli

import (
	"latexify/internal/common"
	"latexify/internal/templates"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt-file]",
	Short: "Generate a LaTeX resume from a prompt and compile it to PDF",
	Long: `Generate a resume from a free-form prompt. The prompt file is plain text
describing your background, skills, and experience; text previously extracted
with 'latexify extract' is sent along with it.

The generated LaTeX becomes the session's working document and is compiled
immediately. A new generation replaces any previous document in the session.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateFormatFlag(&generateConfig),
	RunE:    runGenerate,
}

var (
	generateConfig   common.CommandConfig
	generateTemplate string
	generatePDFOut   string
)

func init() {
	generateCmd.Flags().StringVar(&generateTemplate, "template", "", "Template id (see 'latexify templates')")
	generateCmd.Flags().StringVarP(&generatePDFOut, "output", "o", "", "Write the compiled PDF to this path")
	generateCmd.Flags().StringVar(&generateConfig.OutputFormat, "format", "", "Status output format: json, text, or markdown")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	fileProcessor := common.NewFileProcessor(app.logger)
	prompt, err := fileProcessor.ReadPromptFile(args[0])
	if err != nil {
		return err
	}

	switch {
	case generateTemplate != "":
		app.engine.SelectTemplate(generateTemplate)
		templates.RememberSelected(app.store.Path(), generateTemplate)
	case app.session.TemplateID == "":
		// Fall back to the remembered selection from template browsing.
		if remembered := templates.RecallSelected(app.store.Path()); remembered != "" {
			app.engine.SelectTemplate(remembered)
		}
	}

	app.logger.Info("Starting resume generation",
		"prompt_chars", len(prompt),
		"template", app.session.TemplateID)

	genErr := app.engine.Generate(cmd.Context(), prompt)
	app.metrics.RecordBusinessMetric(cmd.Context(), "resume_generated", genErr == nil)

	// Persist the session even on failure so the recorded state survives.
	if err := app.saveSession(); err != nil {
		return err
	}
	if genErr != nil {
		return genErr
	}

	if generatePDFOut != "" {
		if err := fileProcessor.WriteBinaryFile(generatePDFOut, app.session.CompiledPDF); err != nil {
			return err
		}
		app.logger.Info("PDF written", "file", generatePDFOut)
	}

	return app.printSummary(generateConfig)
}
