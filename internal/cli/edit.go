package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BartekS5/fieldmap/internal/fieldmap"
	"github.com/BartekS5/fieldmap/pkg/logger"
)

func NewShowCmd(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the mapping as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(root.MappingPath)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprint(w, "#")
			for c := 0; c < s.model.ColumnCount(); c++ {
				label, _ := s.model.HeaderLabel(c)
				fmt.Fprintf(w, "\t%s", label)
			}
			fmt.Fprintln(w)
			for r := 0; r < s.model.RowCount(); r++ {
				src, _ := s.model.Get(r, fieldmap.ColumnSource)
				dst, _ := s.model.Get(r, fieldmap.ColumnDestination)
				fmt.Fprintf(w, "%d\t%s\t%s\n", r, orDash(src), orDash(dst))
			}
			return w.Flush()
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type SetOptions struct {
	QuoteField bool
}

func NewSetCmd(root *RootOptions) *cobra.Command {
	opts := &SetOptions{}

	cmd := &cobra.Command{
		Use:   "set ROW COLUMN VALUE",
		Short: "Overwrite one cell; COLUMN is 0/source or 1/destination",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseIndex("row", args[0])
			if err != nil {
				return err
			}
			column, err := parseColumn(args[1])
			if err != nil {
				return err
			}

			s, err := openSession(root.MappingPath)
			if err != nil {
				return err
			}

			value := args[2]
			if opts.QuoteField && column == fieldmap.ColumnSource {
				value = s.model.ContextProvider().BuildContext().Normalize(value)
			}
			if !s.model.Set(row, column, value) {
				return fmt.Errorf("cell (%d, %d) is outside the mapping (%d rows)", row, column, s.model.RowCount())
			}
			return s.save()
		},
	}

	cmd.Flags().BoolVarP(&opts.QuoteField, "quote-field", "q", false, "Store a bare source field name as a quoted column reference")
	return cmd
}

type InsertOptions struct {
	Destination string
	Expression  string
}

func NewInsertCmd(root *RootOptions) *cobra.Command {
	opts := &InsertOptions{}

	cmd := &cobra.Command{
		Use:   "insert POSITION [COUNT]",
		Short: "Insert entries before POSITION",
		Long: `insert adds COUNT entries (default 1) before POSITION; POSITION may
equal the row count to append. Entries without a destination field are not
written to the mapping file, so pass --dest to keep them.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, count, err := positionAndCount(args)
			if err != nil {
				return err
			}

			s, err := openSession(root.MappingPath)
			if err != nil {
				return err
			}
			if !s.model.Insert(position, count) {
				return fmt.Errorf("cannot insert %d entries at %d (%d rows)", count, position, s.model.RowCount())
			}
			for r := position; r < position+count; r++ {
				if opts.Expression != "" {
					s.model.Set(r, fieldmap.ColumnSource, opts.Expression)
				}
				if opts.Destination != "" {
					s.model.Set(r, fieldmap.ColumnDestination, opts.Destination)
				}
			}
			return s.save()
		},
	}

	cmd.Flags().StringVar(&opts.Destination, "dest", "", "Destination field of the new entries")
	cmd.Flags().StringVar(&opts.Expression, "expr", "", "Source expression of the new entries")
	return cmd
}

func NewRemoveCmd(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove POSITION [COUNT]",
		Short: "Remove COUNT entries (default 1) starting at POSITION",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, count, err := positionAndCount(args)
			if err != nil {
				return err
			}

			s, err := openSession(root.MappingPath)
			if err != nil {
				return err
			}
			if !s.model.Remove(position, count) {
				return fmt.Errorf("cannot remove %d entries at %d (%d rows)", count, position, s.model.RowCount())
			}
			return s.save()
		},
	}
}

func positionAndCount(args []string) (position, count int, err error) {
	position, err = parseIndex("position", args[0])
	if err != nil {
		return 0, 0, err
	}
	count = 1
	if len(args) > 1 {
		if count, err = parseIndex("count", args[1]); err != nil {
			return 0, 0, err
		}
	}
	return position, count, nil
}

type ImportOptions struct {
	From string
}

func NewImportCmd(root *RootOptions) *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace every entry with the mapping in a file",
		Long: `import reads a bare mapping (an ordered object of destination field to
source expression, as printed by export) and replaces the current entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := readMapping(opts.From)
			if err != nil {
				return err
			}

			s, err := openSession(root.MappingPath)
			if err != nil {
				return err
			}
			s.model.Import(mapping)
			logger.Infof("Imported %d entries from %s", len(mapping), opts.From)
			return s.save()
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Mapping file to import (.yaml, .yml or .json)")
	cmd.MarkFlagRequired("from")
	return cmd
}
