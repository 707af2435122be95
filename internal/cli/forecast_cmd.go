package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"campuspulse/internal/catalog"
	"campuspulse/internal/domain"
)

func newForecastCmd(app *App) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "List the canteen items expected to be in high demand",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved := domain.ResolveDay(day, app.now())
			items := app.menu().Annotate(app.Engine.ForecastDemand(cmd.Context(), resolved))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleHeader.Render("High-demand canteen items for "+resolved))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for i, it := range items {
				price := styleDim.Render("not on menu")
				if it.OnMenu {
					price = catalog.FormatPrice(it.Price)
				}
				fmt.Fprintf(w, "  %d.\t%s\t%s\n", i+1, it.Name, price)
			}
			if total := catalog.Total(items); total.IsPositive() {
				fmt.Fprintf(w, "\tCombo total\t%s\n", catalog.FormatPrice(total))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "today", "Day of week")

	return cmd
}
