package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/BartekS5/fieldmap/internal/config"
	"github.com/BartekS5/fieldmap/internal/exprctx"
	"github.com/BartekS5/fieldmap/internal/fieldmap"
	"github.com/BartekS5/fieldmap/pkg/logger"
	"github.com/BartekS5/fieldmap/pkg/models"
)

type ValidateOptions struct {
	DestCheck bool
}

func NewValidateCmd(root *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every source expression against the source schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(root.MappingPath)
			if err != nil {
				return err
			}

			checker, err := exprctx.NewChecker(cmd.Context(), s.model.ContextProvider())
			if err != nil {
				return err
			}
			defer checker.Close()

			var dest models.Schema
			if opts.DestCheck {
				dest = s.file.Destination.Schema()
			}

			issues := fieldmap.Validate(cmd.Context(), s.model, checker, dest)
			out := cmd.OutOrStdout()
			for _, issue := range issues {
				fmt.Fprintln(out, issue)
			}
			if fieldmap.HasErrors(issues) {
				return fmt.Errorf("mapping '%s' has errors", root.MappingPath)
			}
			if len(issues) == 0 {
				fmt.Fprintln(out, "No issues found.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DestCheck, "dest-check", true, "Report destination fields missing from the destination schema")
	return cmd
}

type ExportOptions struct {
	Format      string
	OnDuplicate string
	Output      string
}

func NewExportCmd(root *RootOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the mapping as an ordered destination -> expression object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := config.ParseFormat(opts.Format)
			if err != nil {
				return err
			}
			policy, err := models.ParseDuplicatePolicy(opts.OnDuplicate)
			if err != nil {
				return err
			}

			s, err := openSession(root.MappingPath)
			if err != nil {
				return err
			}
			mapping, err := s.model.Export().Resolve(policy)
			if err != nil {
				return err
			}

			data, err := encodeMapping(mapping, format)
			if err != nil {
				return err
			}
			if opts.Output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.Output, data, 0644); err != nil {
				return fmt.Errorf("failed to write '%s': %w", opts.Output, err)
			}
			logger.Infof("Exported %d entries to %s", len(mapping), opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", string(config.FormatYAML), "Output format: yaml or json")
	cmd.Flags().StringVar(&opts.OnDuplicate, "on-duplicate", models.KeepAll.String(), "Repeated destinations: keep, last-wins or reject")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func encodeMapping(m models.Mapping, format config.Format) ([]byte, error) {
	if format == config.FormatJSON {
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return yaml.Marshal(m)
}

// readMapping parses a bare mapping file; "-" reads stdin as YAML, which
// also accepts JSON.
func readMapping(path string) (models.Mapping, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping '%s': %w", path, err)
	}

	var m models.Mapping
	if path != "-" && config.FormatFromPath(path) == config.FormatJSON {
		m, err = models.LoadMapping(data)
	} else {
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping '%s': %w", path, err)
	}
	return m, nil
}
