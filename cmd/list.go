package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/launchradar/launchradar/internal/store"
)

var (
	listSource   string
	listVerdict  string
	listMinScore int
	listMaxScore int
	listLimit    int
	listOffset   int
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored analyses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		f := store.Filter{
			Source:  listSource,
			Verdict: listVerdict,
			Limit:   listLimit,
			Offset:  listOffset,
		}
		if cmd.Flags().Changed("min-score") {
			f.MinScore = &listMinScore
		}
		if cmd.Flags().Changed("max-score") {
			f.MaxScore = &listMaxScore
		}

		recs, err := env.store.ListAnalyses(ctx, f)
		if err != nil {
			return err
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}
		for _, rec := range recs {
			fmt.Printf("%-36s  %-25s  %3d  %-5s  %s\n",
				rec.ID, rec.ProductSlug, rec.Scores.Overall, rec.Recommendation.Verdict, rec.Status)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listSource, "source", "", "filter by discovery source")
	listCmd.Flags().StringVar(&listVerdict, "verdict", "", "filter by verdict (BUILD, PIVOT, PARK)")
	listCmd.Flags().IntVar(&listMinScore, "min-score", 0, "minimum overall score")
	listCmd.Flags().IntVar(&listMaxScore, "max-score", 100, "maximum overall score")
	listCmd.Flags().IntVar(&listLimit, "limit", store.DefaultListLimit, "page size")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "page offset")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print records as JSON")
	rootCmd.AddCommand(listCmd)
}
