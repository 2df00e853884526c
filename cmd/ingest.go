package cmd

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resumatch/internal/document"
	"github.com/spigell/resumatch/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file or directory>...",
	Short: "Analyse resumes and add them to the pool",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ingest(args)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

type ingestFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type ingestReport struct {
	Ingested []*store.Resume `json:"ingested"`
	Failed   []ingestFailure `json:"failed,omitempty"`
}

func ingest(args []string) {
	ctx := context.Background()

	d := setup(ctx)
	defer d.close()

	files, err := collectResumes(args)
	if err != nil {
		d.logger.Fatal("collecting resume files", zap.Error(err))
	}
	if len(files) == 0 {
		d.logger.Info("exiting", zap.String("reason", "no supported resume files found"))
		return
	}

	d.logger.Info("ingesting resumes", zap.Int("count", len(files)))

	ix := d.indexer()

	var (
		mu     sync.Mutex
		report ingestReport
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(d.config.Search.Parallelism, 1))

	for _, file := range files {
		g.Go(func() error {
			fail := func(err error) {
				d.logger.Warn("skipping resume", zap.String("file", file), zap.Error(err))
				mu.Lock()
				report.Failed = append(report.Failed, ingestFailure{File: file, Error: err.Error()})
				mu.Unlock()
			}

			text, err := document.Load(file)
			if err != nil {
				fail(err)
				return nil
			}

			r, err := ix.Ingest(gCtx, filepath.Base(file), text)
			if err != nil {
				fail(err)
				return nil
			}

			mu.Lock()
			report.Ingested = append(report.Ingested, r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Ingested, func(i, j int) bool {
		return report.Ingested[i].FileName < report.Ingested[j].FileName
	})

	d.logger.Info("ingestion finished",
		zap.Int("ingested", len(report.Ingested)),
		zap.Int("failed", len(report.Failed)),
	)

	if err := printJSON(report); err != nil {
		d.logger.Fatal("writing the result", zap.Error(err))
	}
}

// collectResumes expands directories into the supported files they contain.
func collectResumes(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		err := filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			// Explicit files are passed through so that Load reports why they fail.
			if p == path || document.Supported(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
