package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/planwise/plugin/ai/category"
	"github.com/hrygo/planwise/plugin/ai/timeout"
	"github.com/hrygo/planwise/store"
)

func newCategorizeCommand(v *viper.Viper) *cobra.Command {
	var summary, description, location string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Print the category of an event",
		Example: `  planwise categorize --summary "Team standup meeting"
  planwise categorize --summary Checkup --location "Dentist clinic" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile(v)
			if err != nil {
				return err
			}
			c, err := category.NewCategorizer(category.Config{Threshold: p.CategoryThreshold, CacheSize: -1})
			if err != nil {
				return err
			}

			result := c.CategorizeDetailed(summary, description, location)
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(result)
			}
			_, err = fmt.Fprintf(out, "%s (path=%s confidence=%.3f)\n", result.Category, result.Path, result.Confidence)
			return err
		},
	}
	cmd.Flags().StringVar(&summary, "summary", "", "event summary")
	cmd.Flags().StringVar(&description, "description", "", "event description")
	cmd.Flags().StringVar(&location, "location", "", "event location")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newBackfillCommand(v *viper.Viper) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Categorize every stored event that has no valid category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout.BackfillTimeout)
			defer cancel()

			targets := []struct {
				name  string
				store *store.Store
			}{{"identity", rt.identity}, {"fallback", rt.fallback}}
			for _, target := range targets {
				if target.store == nil {
					continue
				}
				result, err := rt.categorizer.Backfill(ctx, target.store, concurrency)
				if err != nil {
					return errors.Wrapf(err, "failed to backfill the %s store", target.name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s store: scanned %d, updated %d, failed %d%s\n",
					target.name, result.Scanned, result.Updated, result.Failed, formatCounts(result.ByCategory))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", category.DefaultBackfillConcurrency, "concurrent event updates")
	return cmd
}

func formatCounts(counts map[category.Category]int) string {
	var parts []string
	for _, c := range category.All() {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", c, n))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " ") + ")"
}
