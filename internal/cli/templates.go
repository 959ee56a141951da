package cli

import (
	"latexify/internal/common"
	"latexify/internal/templates"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List resume templates or select one for generation",
	Long: `Fetch the available resume templates and print them grouped by category.
With --select, validate the template ID and remember it for future
'latexify generate' runs.`,
	PreRunE: validateFormatFlag(&templatesConfig),
	RunE:    runTemplates,
}

var (
	templatesConfig common.CommandConfig
	templatesSelect string
)

func init() {
	templatesCmd.Flags().StringVar(&templatesSelect, "select", "", "Template ID to select for future generations")
	templatesCmd.Flags().StringVarP(&templatesConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	templatesCmd.Flags().StringVar(&templatesConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runTemplates(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	catalog := app.catalog()

	if templatesSelect != "" {
		tmpl, err := catalog.Find(cmd.Context(), templatesSelect)
		if err != nil {
			return err
		}
		app.engine.SelectTemplate(tmpl.ID)
		templates.RememberSelected(app.store.Path(), tmpl.ID)
		if err := app.saveSession(); err != nil {
			return err
		}
		cmd.Printf("Selected template %s (%s)\n", tmpl.ID, tmpl.Name)
		if tmpl.ExamplePrompt != "" {
			cmd.Printf("Example prompt: %s\n", tmpl.ExamplePrompt)
		}
		return nil
	}

	list, err := catalog.List(cmd.Context())
	if err != nil {
		return err
	}

	return app.output.HandleOutput(list, templatesConfig)
}
