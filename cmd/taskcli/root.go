package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "taskcli",
		Short:         "Manage tasks on a task API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.serverURL, "server", "", "task API base URL, overrides the config file")
	rootCmd.PersistentFlags().StringVar(&flags.tokenFile, "token-file", "", "auth state file path, overrides the config file")
	rootCmd.PersistentFlags().IntVar(&flags.retries, "retries", -1, "retries for transient network failures, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&flags.plain, "plain", false, "tab separated output instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log retries and request failures")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newEditCommand(ctx))
	rootCmd.AddCommand(newDoneCommand(ctx))
	rootCmd.AddCommand(newRemoveCommand(ctx))
	rootCmd.AddCommand(newRegisterCommand(ctx))
	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))

	return rootCmd
}
