package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate <slug>",
	Short: "Drop all cached analyses for a product slug",
	Long:  "Deletes the stored analyses for the slug so the next analyze run hits the model again. The product identity row is kept.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.InvalidateSlug(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("invalidated %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(invalidateCmd)
}
