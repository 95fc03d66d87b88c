package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BartekS5/fieldmap/internal/config"
	"github.com/BartekS5/fieldmap/internal/fieldmap"
	"github.com/BartekS5/fieldmap/pkg/database"
	"github.com/BartekS5/fieldmap/pkg/logger"
	"github.com/BartekS5/fieldmap/pkg/models"
)

type InitOptions struct {
	SourceFile  string
	DestFile    string
	SourceTable string
	DestTable   string
	Force       bool
}

func NewInitCmd(root *RootOptions) *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a mapping file by matching destination fields to source fields by name",
		Long: `init builds one entry per destination field. An entry's source
expression is the source field with exactly the same name, or empty.
Schemas come from schema files or from SQL Server tables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SourceFile, "source", "", "Source schema file")
	cmd.Flags().StringVar(&opts.DestFile, "dest", "", "Destination schema file")
	cmd.Flags().StringVar(&opts.SourceTable, "source-table", "", "Source SQL Server table ([schema.]table)")
	cmd.Flags().StringVar(&opts.DestTable, "dest-table", "", "Destination SQL Server table ([schema.]table)")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing mapping file")

	cmd.MarkFlagsMutuallyExclusive("source", "source-table")
	cmd.MarkFlagsMutuallyExclusive("dest", "dest-table")
	cmd.MarkFlagsOneRequired("source", "source-table")
	cmd.MarkFlagsOneRequired("dest", "dest-table")

	return cmd
}

func runInit(ctx context.Context, root *RootOptions, opts *InitOptions) error {
	if !opts.Force {
		if _, err := os.Stat(root.MappingPath); err == nil {
			return fmt.Errorf("mapping file '%s' already exists (use --force to overwrite)", root.MappingPath)
		}
	}

	var db *sql.DB
	if opts.SourceTable != "" || opts.DestTable != "" {
		if err := root.Config.RequireSQL(); err != nil {
			return err
		}
		var err error
		db, err = database.ConnectSQL(ctx, root.Config.SQLConnString)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	source, err := loadSchema(ctx, db, opts.SourceFile, opts.SourceTable)
	if err != nil {
		return fmt.Errorf("source schema: %w", err)
	}
	dest, err := loadSchema(ctx, db, opts.DestFile, opts.DestTable)
	if err != nil {
		return fmt.Errorf("destination schema: %w", err)
	}

	model := fieldmap.New(source.schema, dest.schema)
	mf := &config.MappingFile{
		Version:     config.MappingFileVersion,
		Source:      config.NewSchemaFile(source.name, source.schema),
		Destination: config.NewSchemaFile(dest.name, dest.schema),
		Mapping:     model.Export(),
	}
	if err := config.SaveMappingFile(root.MappingPath, mf); err != nil {
		return err
	}
	logger.Infof("Initialized %s with %d entries", root.MappingPath, model.RowCount())
	return nil
}

type namedSchema struct {
	name   string
	schema models.Schema
}

func loadSchema(ctx context.Context, db *sql.DB, file, table string) (namedSchema, error) {
	switch {
	case file != "":
		f, err := config.LoadSchemaFile(file)
		if err != nil {
			return namedSchema{}, err
		}
		return namedSchema{name: f.Name, schema: f.Schema()}, nil
	case table != "":
		s, err := database.LoadTableSchema(ctx, db, table)
		if err != nil {
			return namedSchema{}, err
		}
		return namedSchema{name: table, schema: s}, nil
	default:
		return namedSchema{}, errors.New("no schema given")
	}
}
