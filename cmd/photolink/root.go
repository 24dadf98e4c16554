package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "photolink",
		Short:         "Reconcile catalog product photos with the local image pool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			flags.thresholdSet = cmd.Flags().Changed("threshold")
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.catalog, "catalog", "", "Catalog JSON file (overrides paths.catalog)")
	pf.StringVar(&flags.assets, "assets", "", "Asset directory (overrides paths.assets_dir)")
	pf.Float64Var(&flags.threshold, "threshold", 0, "Similarity threshold (overrides matching.similarity_threshold)")
	pf.BoolVar(&flags.json, "json", false, "Write machine-readable JSON to stdout")

	rootCmd.AddCommand(newApplyCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newRestoreCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
