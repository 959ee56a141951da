package cli

import (
	"latexify/internal/common"

	"github.com/spf13/cobra"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [prompt-file]",
	Short: "Enrich the session prompt with AI",
	Long: `Ask the backend to rewrite the session's prompt into a richer one. With a
prompt file argument the session prompt is set from the file first. The
enhanced prompt replaces the previous one wholesale; the next generate uses it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnhance,
}

func runEnhance(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	if len(args) == 1 {
		fileProcessor := common.NewFileProcessor(app.logger)
		prompt, err := fileProcessor.ReadPromptFile(args[0])
		if err != nil {
			return err
		}
		app.session.RawPrompt = prompt
	}

	enhanceErr := app.engine.Enhance(cmd.Context())

	if err := app.saveSession(); err != nil {
		return err
	}
	if enhanceErr != nil {
		return enhanceErr
	}

	cmd.Println(app.session.RawPrompt)
	return nil
}
