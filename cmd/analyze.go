package cmd

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/document"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/strategy"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Extract a candidate profile from a resume file or text",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("text", "t", "", "resume text to analyse instead of a file")
}

type analyzeOutput struct {
	FileName string `json:"fileName,omitempty"`
	resume.Analysis
}

func analyze(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	d := setup(ctx)
	defer d.close()

	inline, _ := cmd.Flags().GetString("text")
	if len(args) == 0 && inline == "" {
		d.logger.Fatal("a resume file or --text is required")
	}

	var (
		text string
		name string
		err  error
	)
	if len(args) == 1 {
		name = filepath.Base(args[0])
		text, err = document.Load(args[0])
	} else {
		text, err = document.Check(document.Clean(inline))
	}
	if err != nil {
		d.logger.Fatal("reading the resume", zap.Error(err))
	}

	d.logger.Info("analysing the resume",
		zap.String("file", name),
		zap.String("mode", string(d.analyzer.Mode())),
	)

	analysis, err := d.analyzer.Analyze(ctx, text)
	if err != nil {
		var fatal *strategy.FatalError
		if errors.As(err, &fatal) {
			d.logger.Fatal("no strategy could analyse the resume",
				zap.String("mode", string(fatal.Mode)),
				zap.Int("attempts", len(fatal.Failures)),
				zap.Error(err),
			)
		}
		d.logger.Fatal("analysing the resume", zap.Error(err))
	}

	if err := printJSON(analyzeOutput{FileName: name, Analysis: analysis}); err != nil {
		d.logger.Fatal("writing the result", zap.Error(err))
	}
}
