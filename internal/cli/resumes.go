package cli

import (
	"bufio"
	"strings"

	"latexify/internal/common"

	"github.com/spf13/cobra"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "Manage resumes saved to your account",
}

var resumesListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List your saved resumes",
	PreRunE: validateFormatFlag(&resumesListConfig),
	RunE:    runResumesList,
}

var resumesDeleteCmd = &cobra.Command{
	Use:   "delete <resume-id>",
	Short: "Delete a saved resume",
	Long: `Delete a saved resume by ID. The deletion must be confirmed before any
request is sent; pass --yes to skip the prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runResumesDelete,
}

var (
	resumesListConfig common.CommandConfig
	resumesDeleteYes  bool
)

func init() {
	resumesListCmd.Flags().StringVarP(&resumesListConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	resumesListCmd.Flags().StringVar(&resumesListConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	resumesDeleteCmd.Flags().BoolVarP(&resumesDeleteYes, "yes", "y", false, "Delete without asking for confirmation")
	resumesCmd.AddCommand(resumesListCmd)
	resumesCmd.AddCommand(resumesDeleteCmd)
}

func runResumesList(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	artifacts, err := app.profiles().List(cmd.Context())
	if err != nil {
		return err
	}

	return app.output.HandleOutput(artifacts, resumesListConfig)
}

func runResumesDelete(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	manager := app.profiles()
	if err := manager.RequestDelete(args[0]); err != nil {
		return err
	}

	if !resumesDeleteYes {
		cmd.Printf("Delete resume %s? [y/N]: ", args[0])
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			manager.CancelDelete()
			cmd.Println("Deletion cancelled")
			return nil
		}
	}

	if err := manager.ConfirmDelete(cmd.Context()); err != nil {
		return err
	}

	cmd.Printf("Deleted resume %s\n", args[0])
	return nil
}
