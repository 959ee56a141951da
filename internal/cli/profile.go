package cli

import (
	"latexify/internal/common"
	"latexify/internal/types"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and update your user profile",
}

var profileShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Show the signed-in user's profile",
	PreRunE: validateFormatFlag(&profileShowConfig),
	RunE:    runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	RunE:  runProfileUpdate,
}

var profileSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the configured identity to the backend",
	RunE:  runProfileSync,
}

var (
	profileShowConfig common.CommandConfig
	profileFullName   string
	profileHeadline   string
	profileLocation   string
)

func init() {
	profileShowCmd.Flags().StringVarP(&profileShowConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	profileShowCmd.Flags().StringVar(&profileShowConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	profileUpdateCmd.Flags().StringVar(&profileFullName, "full-name", "", "Full name shown on the profile")
	profileUpdateCmd.Flags().StringVar(&profileHeadline, "headline", "", "Professional headline")
	profileUpdateCmd.Flags().StringVar(&profileLocation, "location", "", "Location")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileSyncCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	prof, err := app.profiles().Profile(cmd.Context())
	if err != nil {
		return err
	}

	return app.output.HandleOutput(prof, profileShowConfig)
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	manager := app.profiles()

	// Start from the current profile so unset flags leave fields alone.
	current, err := manager.Profile(cmd.Context())
	if err != nil {
		return err
	}
	updated := types.Profile{}
	if current != nil {
		updated = *current
	}
	if cmd.Flags().Changed("full-name") {
		updated.FullName = profileFullName
	}
	if cmd.Flags().Changed("headline") {
		updated.Headline = profileHeadline
	}
	if cmd.Flags().Changed("location") {
		updated.Location = profileLocation
	}

	result, err := manager.UpdateProfile(cmd.Context(), updated)
	if err != nil {
		return err
	}

	cmd.Println("Profile updated")
	return app.output.HandleOutput(result, profileShowConfig)
}

func runProfileSync(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.profiles().SyncUser(cmd.Context()); err != nil {
		return err
	}

	cmd.Println("User synced")
	return nil
}
