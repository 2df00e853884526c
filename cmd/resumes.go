package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/store"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "Inspect and manage the stored resume pool",
}

var resumesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored resumes",
	Run: func(_ *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, d *deps, s *store.Store) {
			resumes, err := s.List(ctx, store.Filter{})
			if err != nil {
				d.logger.Fatal("listing resumes", zap.Error(err))
			}
			d.logger.Info("stored resumes", zap.Int("count", len(resumes)))
			if err := printJSON(resumes); err != nil {
				d.logger.Fatal("writing the result", zap.Error(err))
			}
		})
	},
}

var resumesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one stored resume",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, d *deps, s *store.Store) {
			r, err := s.Get(ctx, args[0])
			if err != nil {
				d.logger.Fatal("getting the resume", zap.String("id", args[0]), zap.Error(err))
			}
			if err := printJSON(r); err != nil {
				d.logger.Fatal("writing the result", zap.Error(err))
			}
		})
	},
}

var resumesDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Remove resumes from the pool",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, d *deps, s *store.Store) {
			for _, id := range args {
				err := s.Delete(ctx, id)
				switch {
				case errors.Is(err, store.ErrNotFound):
					d.logger.Warn("resume not found", zap.String("id", id))
				case err != nil:
					d.logger.Fatal("deleting the resume", zap.String("id", id), zap.Error(err))
				default:
					d.logger.Info("resume deleted", zap.String("id", id))
				}
			}
		})
	},
}

func init() {
	resumesCmd.AddCommand(resumesListCmd, resumesShowCmd, resumesDeleteCmd)
	rootCmd.AddCommand(resumesCmd)
}

func withStore(fn func(ctx context.Context, d *deps, s *store.Store)) {
	ctx := context.Background()

	d := setup(ctx)
	defer d.close()

	fn(ctx, d, d.openStore())
}
