package main

import (
	"fmt"
	"io"

	"github.com/jrsteele09/pcrs-client/recommender"
	"github.com/spf13/cobra"
)

func (a *app) recommendCmd() *cobra.Command {
	var prefs recommender.Preferences
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend products for how you use your PC",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.client.Recommender.Recommend(cmd.Context(), prefs)
			if err != nil {
				return fieldError(err)
			}
			if len(rec.Products) == 0 {
				fmt.Fprintln(a.out, "No products match yet.")
				return nil
			}
			a.table("ID\tNAME\tCATEGORY\tPRICE\tVENDOR", func(w io.Writer) {
				for _, p := range rec.Products {
					fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\n", p.ID, p.Name, p.Category, p.Price, p.VendorName())
				}
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&prefs.PrimaryActivity, "activity", "", "primary activity, e.g. Gaming")
	cmd.Flags().StringSliceVar(&prefs.SecondaryActivities, "also", nil, "secondary activities")
	cmd.Flags().Float64Var(&prefs.Budget, "budget", 0, "maximum price per product (0 for none)")
	return cmd
}

func (a *app) suggestCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest [prefix]",
		Short: "Autocomplete search terms",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			words, err := a.client.Suggestions.Complete(cmd.Context(), prefix, limit)
			if err != nil {
				return err
			}
			for _, w := range words {
				fmt.Fprintln(a.out, w)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum suggestions")
	return cmd
}
