package cli

import (
	"fmt"

	"latexify/internal/common"
	"latexify/internal/errors"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a compiled resume PDF to disk",
	Long: `Write the session's compiled PDF to a file. With --artifact, download a
previously saved resume from your account instead.`,
	RunE: runExport,
}

var (
	exportOutput   string
	exportArtifact string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Destination file path (required)")
	exportCmd.Flags().StringVar(&exportArtifact, "artifact", "", "Saved resume ID to download instead of the session PDF")
	_ = exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	fileProcessor := common.NewFileProcessor(app.logger)
	if err := fileProcessor.ValidateOutputFile(exportOutput); err != nil {
		return err
	}

	var pdf []byte
	if exportArtifact != "" {
		pdf, err = downloadArtifactPDF(cmd, app, exportArtifact)
		if err != nil {
			return err
		}
	} else {
		if !app.session.HasPDF() {
			return errors.NewValidationError(errors.ErrCodeNoPDF,
				"No compiled PDF in the session; run 'latexify generate' or 'latexify recompile' first", nil)
		}
		pdf = app.session.CompiledPDF
	}

	if err := fileProcessor.WriteBinaryFile(exportOutput, pdf); err != nil {
		return err
	}

	cmd.Printf("Wrote %s\n", exportOutput)
	return nil
}

func downloadArtifactPDF(cmd *cobra.Command, app *app, id string) ([]byte, error) {
	manager := app.profiles()
	artifacts, err := manager.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	for i := range artifacts {
		if artifacts[i].ID == id {
			return manager.DownloadArtifact(cmd.Context(), &artifacts[i])
		}
	}
	return nil, errors.NewValidationError(errors.ErrCodeFileNotFound,
		fmt.Sprintf("No saved resume with id %s", id), nil)
}
