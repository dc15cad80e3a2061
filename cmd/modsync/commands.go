package main

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/modsync/pkg/commands/cleanup"
	"github.com/arthur-debert/modsync/pkg/commands/export"
	"github.com/arthur-debert/modsync/pkg/commands/importcmd"
	"github.com/arthur-debert/modsync/pkg/commands/initialize"
	"github.com/arthur-debert/modsync/pkg/commands/update"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: MsgInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initialize.Run(cmd.Context(), initialize.Options{})
		},
	}
}

func newImportCmd() *cobra.Command {
	var (
		assumeYes  bool
		skipVerify bool
	)
	cmd := &cobra.Command{
		Use:   "import <manifest>",
		Short: MsgImportShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := importcmd.Run(importcmd.Options{
				ManifestPath: args[0],
				AssumeYes:    assumeYes,
				SkipVerify:   skipVerify,
			})
			return err
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, MsgFlagYes)
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, MsgFlagSkipVerify)
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <manifest>",
		Short: MsgExportShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return export.Run(export.Options{ManifestPath: args[0]})
		},
	}
}

func newUpdateCmd() *cobra.Command {
	var (
		assumeYes  bool
		skipVerify bool
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: MsgUpdateShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := update.Run(cmd.Context(), update.Options{
				AssumeYes:  assumeYes,
				SkipVerify: skipVerify,
			})
			return err
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, MsgFlagYes)
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, MsgFlagSkipVerify)
	return cmd
}

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: MsgCleanupShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cleanup.Run(cleanup.Options{})
		},
	}
}
