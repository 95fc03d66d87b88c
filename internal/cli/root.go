// Package cli wires the fieldmap commands with cobra. Every command that
// edits a mapping loads the mapping file, applies one model operation and
// writes the file back.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/BartekS5/fieldmap/internal/config"
)

const defaultMappingPath = "mapping.yaml"

type RootOptions struct {
	MappingPath string
	Config      *config.Config
}

func NewRootCmd(cfg *config.Config) *cobra.Command {
	if cfg == nil {
		cfg = &config.Config{}
	}
	opts := &RootOptions{Config: cfg}

	rootCmd := &cobra.Command{
		Use:   "fieldmap",
		Short: "fieldmap - edit destination field mappings",
		Long: `fieldmap maintains an ordered mapping from destination fields to
source expressions. Mappings are stored in YAML or JSON files and can be
pushed to and pulled from MongoDB.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.MappingPath, "mapping", "m", defaultMappingPath, "Path to the mapping file (.yaml, .yml or .json)")

	rootCmd.AddCommand(
		NewInitCmd(opts),
		NewShowCmd(opts),
		NewSetCmd(opts),
		NewInsertCmd(opts),
		NewRemoveCmd(opts),
		NewValidateCmd(opts),
		NewExportCmd(opts),
		NewImportCmd(opts),
		NewPushCmd(opts),
		NewPullCmd(opts),
		NewDeleteCmd(opts),
		NewListCmd(opts),
	)

	return rootCmd
}
