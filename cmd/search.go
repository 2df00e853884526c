package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/extract"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/search"
	"github.com/spigell/resumatch/internal/store"
	"github.com/spigell/resumatch/internal/utils"
)

const (
	PromptBack = "back"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank stored resumes against a job query",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	addSearchFlags(searchCmd)
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", string(search.TypeKeyword), "search type: keyword, embedding or llm")
	cmd.Flags().IntP("limit", "l", 0, "maximum number of results (default from search.limit)")
	cmd.Flags().Int("min-experience", 0, "minimum years of experience")
	cmd.Flags().String("education", "", "required education level")
	cmd.Flags().String("category", "", "required job category, e.g. "+strings.Join(extract.Categories(), ", "))
	cmd.Flags().StringSlice("skill", nil, "skills of which at least one is required")
	cmd.Flags().BoolP("interactive", "i", false, "browse results in an interactive picker")
}

func runSearch(cmd *cobra.Command, query string) {
	ctx := context.Background()

	d := setup(ctx)
	defer d.close()

	req, err := searchRequest(cmd, query, d.config.Search.Limit)
	if err != nil {
		d.logger.Fatal("parsing search flags", zap.Error(err))
	}

	d.logger.Info("starting the search",
		zap.String("search", query),
		zap.String("type", string(req.Type)),
	)

	results, err := d.searchService().Search(ctx, req)
	if err != nil {
		d.logger.Fatal("searching resumes", zap.Error(err))
	}

	d.logger.Info("search finished", zap.Int("count", len(results)))

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive && len(results) > 0 {
		if err := browse(results); err != nil {
			d.logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	if err := printJSON(results); err != nil {
		d.logger.Fatal("writing the result", zap.Error(err))
	}
}

func searchRequest(cmd *cobra.Command, query string, defaultLimit int) (search.Request, error) {
	flags := cmd.Flags()

	rawType, _ := flags.GetString("type")
	typ, err := search.ParseType(rawType)
	if err != nil {
		return search.Request{}, err
	}

	limit, _ := flags.GetInt("limit")
	if !flags.Changed("limit") {
		limit = defaultLimit
	}
	if limit < 0 {
		return search.Request{}, fmt.Errorf("limit must not be negative, got %d", limit)
	}

	minExperience, _ := flags.GetInt("min-experience")
	category, _ := flags.GetString("category")
	skills, _ := flags.GetStringSlice("skill")

	var level resume.EducationLevel
	if raw, _ := flags.GetString("education"); strings.TrimSpace(raw) != "" {
		level = resume.StandardizeEducation(raw)
	}

	return search.Request{
		Query: query,
		Type:  typ,
		Limit: limit,
		Filter: store.Filter{
			MinExperience:  minExperience,
			EducationLevel: level,
			Category:       canonicalCategory(category),
			Skills:         skills,
		},
	}, nil
}

// canonicalCategory spells a known category the way the extractor does.
// Unknown names are kept, since remote models may use their own categories.
func canonicalCategory(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, name := range append(extract.Categories(), resume.DefaultCategory) {
		if strings.EqualFold(raw, name) {
			return name
		}
	}
	return raw
}

// browse lets the user pick results one by one and prints the chosen profile.
func browse(results []search.Result) error {
	items := make([]string, 0, len(results)+1)

	for _, r := range results {
		items = append(items, fmt.Sprintf("%3d %s %s / %s / %s",
			r.Score.Score, r.ID, r.FileName, r.Analysis.Category,
			utils.TruncateForLog(r.Analysis.Summary, 60),
		))
	}

	resultPrompt := promptui.Select{
		Label: "Choose a resume and press ENTER",
		Items: append(items, PromptBack),
		Size:  10,
	}

	for {
		i, _, err := resultPrompt.Run()
		if err != nil {
			return err
		}
		if i >= len(results) {
			return nil
		}

		if err := printJSON(results[i]); err != nil {
			return err
		}
	}
}
