package cli

import (
	"fmt"
	"os"

	"latexify/internal/errors"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [resume.pdf]",
	Short: "Extract text from an existing resume PDF",
	Long: `Upload an existing resume PDF and let the backend extract its text. The
extracted text replaces both the session's extracted text and its prompt, so
the next generate starts from your current resume. Only PDF files are
accepted; the check happens locally before anything is uploaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	filename := args[0]
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			app.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	extractErr := app.engine.ExtractFromUpload(cmd.Context(), filename, file)

	if err := app.saveSession(); err != nil {
		return err
	}
	if extractErr != nil {
		return extractErr
	}

	app.logger.Info("Extraction completed", "chars", len(app.session.ExtractedText))
	return nil
}
