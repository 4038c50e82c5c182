package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchradar/launchradar/internal/model"
)

var (
	analyzeDemo     bool
	analyzeStrategy bool
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyze a product listing for solo-founder viability",
	Long:  "Scrapes the product page, runs the reasoning model analysis and prints the scored result. Fresh cached analyses are served without a model call.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var rec *model.AnalysisRecord
		switch {
		case analyzeDemo:
			product := model.DemoProduct()
			if analyzeStrategy {
				return printStrategy(ctx, env, &product)
			}
			rec, err = env.analyzer.AnalyzeProduct(ctx, &product)
		case len(args) == 1:
			if analyzeStrategy {
				fetched, ferr := env.fetcher.FetchProduct(ctx, args[0])
				if ferr != nil {
					return eris.Wrap(ferr, "fetch product")
				}
				return printStrategy(ctx, env, fetched)
			}
			rec, err = env.analyzer.Analyze(ctx, args[0])
		default:
			return eris.New("a product url is required unless --demo is set")
		}
		if err != nil && rec == nil {
			return err
		}
		if err != nil {
			// The analysis completed but could not be cached.
			zap.L().Warn("analysis not persisted", zap.Error(err))
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}

		printSummary(rec)
		return nil
	},
}

func printStrategy(ctx context.Context, env *appEnv, product *model.ProductRecord) error {
	report, err := env.analyzer.GenerateStrategyReport(ctx, product)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func printSummary(rec *model.AnalysisRecord) {
	fmt.Printf("%s  [%s]\n", rec.Product.Name, rec.Status)
	fmt.Printf("  slug:     %s\n", rec.ProductSlug)
	fmt.Printf("  overall:  %d  (feasibility %d / desirability %d / viability %d)\n",
		rec.Scores.Overall, rec.Scores.Feasibility, rec.Scores.Desirability, rec.Scores.Viability)
	fmt.Printf("  verdict:  %s (confidence %d)\n", rec.Recommendation.Verdict, rec.Recommendation.Confidence)
	fmt.Printf("  summary:  %s\n", rec.Summary)
	if rec.ErrorMessage != "" {
		fmt.Printf("  error:    %s\n", rec.ErrorMessage)
	}
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeDemo, "demo", false, "analyze the built-in demo product instead of a live page")
	analyzeCmd.Flags().BoolVar(&analyzeStrategy, "strategy", false, "generate a markdown strategy report instead of the scored analysis")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full record as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
