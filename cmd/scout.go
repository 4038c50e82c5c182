package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchradar/launchradar/internal/model"
)

var (
	scoutAnalyze bool
	scoutJSON    bool
	scoutLimit   int
)

var scoutCmd = &cobra.Command{
	Use:   "scout",
	Short: "Discover recently launched products across listing sites",
	Long:  "Scrapes the enabled listing sites in parallel, dedupes the results and prints them. With --analyze each discovered product is run through the viability pipeline.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		products := env.aggregator.ScrapeMultiSource(ctx)
		if scoutLimit > 0 && len(products) > scoutLimit {
			products = products[:scoutLimit]
		}
		zap.L().Info("scout complete", zap.Int("products", len(products)))

		if scoutAnalyze {
			return analyzeDiscovered(cmd, env, products)
		}

		if scoutJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(products)
		}
		for _, p := range products {
			fmt.Printf("[%s] %s\n", p.Source, p.Name)
			if p.Tagline != "" {
				fmt.Printf("    %s\n", p.Tagline)
			}
			fmt.Printf("    %s\n", p.SourceURL)
		}
		return nil
	},
}

// analyzeDiscovered runs each discovered listing through the pipeline,
// working from the listing preview rather than re-scraping detail pages.
// Failures are logged and skipped so one bad listing never aborts the batch.
func analyzeDiscovered(cmd *cobra.Command, env *appEnv, products []model.UnifiedProduct) error {
	ctx := cmd.Context()
	for _, p := range products {
		product := model.ProductRecord{
			Name:         p.Name,
			Tagline:      p.Tagline,
			CanonicalURL: p.URL,
			SourceURL:    p.SourceURL,
			ScrapedAt:    time.Now().UTC(),
		}
		rec, err := env.analyzer.AnalyzeProduct(ctx, &product)
		if err != nil && rec == nil {
			zap.L().Warn("analysis failed",
				zap.String("name", p.Name), zap.String("url", p.SourceURL), zap.Error(err))
			continue
		}
		if err != nil {
			zap.L().Warn("analysis not persisted", zap.String("slug", rec.ProductSlug), zap.Error(err))
		}
		fmt.Printf("%-30s  %3d  %s\n", rec.Product.Name, rec.Scores.Overall, rec.Recommendation.Verdict)
	}
	return nil
}

func init() {
	scoutCmd.Flags().BoolVar(&scoutAnalyze, "analyze", false, "run each discovered product through the analysis pipeline")
	scoutCmd.Flags().BoolVar(&scoutJSON, "json", false, "print discovered products as JSON")
	scoutCmd.Flags().IntVar(&scoutLimit, "limit", 0, "cap the number of products processed (0 = no cap)")
	rootCmd.AddCommand(scoutCmd)
}
