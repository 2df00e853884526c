package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/strategy"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report which analysis strategy is available",
	Run: func(_ *cobra.Command, _ []string) {
		status()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func status() {
	ctx := context.Background()

	d := setup(ctx)
	defer d.close()

	st := d.analyzer.Status(ctx)
	if st.Status != strategy.StatusAvailable {
		d.logger.Warn("no analysis strategy is available", zap.String("mode", st.Mode))
	}

	if err := printJSON(st); err != nil {
		d.logger.Fatal("writing the result", zap.Error(err))
	}
}
