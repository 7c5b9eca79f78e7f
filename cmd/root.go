package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	app := wireApp()

	rootCmd := &cobra.Command{
		Use:           "waapi-creator",
		Short:         "Batch-create Wwise objects under the selected object",
		Long:          "waapi-creator connects to a running Wwise instance over WAAPI and creates one object per input name under the currently selected object. Run without arguments for the interactive form.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForm(cmd, app)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/waapi-creator/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newCreateCmd(app),
		newTypesCmd(app),
		newSelectionCmd(app),
		newInfoCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
