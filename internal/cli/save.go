package cli

import (
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the compiled resume to your account",
	Long: `Upload the session's compiled PDF and its LaTeX source to the backend
under the signed-in user's account. Requires identity configuration and a
compiled PDF in the session.`,
	RunE: runSave,
}

var (
	saveTitle       string
	saveDescription string
)

func init() {
	saveCmd.Flags().StringVar(&saveTitle, "title", "", "Title for the saved resume (required)")
	saveCmd.Flags().StringVar(&saveDescription, "description", "", "Optional description")
	_ = saveCmd.MarkFlagRequired("title")
}

func runSave(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	artifact, saveErr := app.profiles().Save(cmd.Context(), app.session, saveTitle, saveDescription)
	app.metrics.RecordBusinessMetric(cmd.Context(), "resume_saved", saveErr == nil)
	if saveErr != nil {
		return saveErr
	}

	if artifact != nil && artifact.ID != "" {
		cmd.Printf("Saved resume %q (id %s)\n", artifact.Title, artifact.ID)
	} else {
		cmd.Printf("Saved resume %q\n", saveTitle)
	}
	return nil
}
