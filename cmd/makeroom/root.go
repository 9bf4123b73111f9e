package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	flags := &runFlags{}

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "makeroom [path]",
		Short: "Reclaim disk space by re-encoding media to HEVC and AVIF",
		Long: `makeroom walks path (default: the current directory), re-encodes videos that
are not already efficient to HEVC and JPEG images to AVIF, and stops once the
byte budget of qualifying input has been consumed. Originals are never removed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runReclaim(cmd, cfg, root, flags.dryRun)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.register(rootCmd)

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
