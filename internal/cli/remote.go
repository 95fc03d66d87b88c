package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/BartekS5/fieldmap/internal/config"
	"github.com/BartekS5/fieldmap/internal/store"
	"github.com/BartekS5/fieldmap/pkg/database"
	"github.com/BartekS5/fieldmap/pkg/logger"
)

// withStore connects to MongoDB for the duration of fn.
func withStore(ctx context.Context, cfg *config.Config, fn func(*store.MongoStore) error) error {
	if err := cfg.RequireMongo(); err != nil {
		return err
	}
	client, err := database.ConnectMongo(ctx, cfg.MongoConnString)
	if err != nil {
		return err
	}
	defer database.DisconnectMongo(client)

	return fn(store.NewMongoStore(client, cfg.MongoDatabase, cfg.MongoCollection))
}

type RemoteOptions struct {
	Name string
}

func NewPushCmd(root *RootOptions) *cobra.Command {
	opts := &RemoteOptions{}

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Store the mapping file in MongoDB under a name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := config.LoadMappingFile(root.MappingPath)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), root.Config, func(s *store.MongoStore) error {
				return s.Save(cmd.Context(), opts.Name, mf)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Name of the stored mapping")
	cmd.MarkFlagRequired("name")
	return cmd
}

func NewPullCmd(root *RootOptions) *cobra.Command {
	opts := &RemoteOptions{}

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Write a mapping stored in MongoDB to the mapping file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), root.Config, func(s *store.MongoStore) error {
				mf, err := s.Load(cmd.Context(), opts.Name)
				if err != nil {
					return err
				}
				if err := config.SaveMappingFile(root.MappingPath, mf); err != nil {
					return err
				}
				logger.Infof("Pulled %q into %s", opts.Name, root.MappingPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Name of the stored mapping")
	cmd.MarkFlagRequired("name")
	return cmd
}

func NewDeleteCmd(root *RootOptions) *cobra.Command {
	opts := &RemoteOptions{}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a mapping stored in MongoDB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), root.Config, func(s *store.MongoStore) error {
				if err := s.Delete(cmd.Context(), opts.Name); err != nil {
					return err
				}
				logger.Infof("Deleted %q", opts.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Name of the stored mapping")
	cmd.MarkFlagRequired("name")
	return cmd
}

func NewListCmd(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List mappings stored in MongoDB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), root.Config, func(s *store.MongoStore) error {
				summaries, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tUPDATED")
				for _, sum := range summaries {
					fmt.Fprintf(w, "%s\t%s\n", sum.Name, sum.UpdatedAt.Local().Format(time.DateTime))
				}
				return w.Flush()
			})
		},
	}
}
