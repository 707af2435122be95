package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"campuspulse/internal/domain"
)

var errNoHistoryStore = errors.New("history store not configured: set db_path or postgres_dsn")

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Reader == nil {
				return errNoHistoryStore
			}
			records, err := app.Reader.GetRecentPredictions(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No predictions recorded yet.")
				return nil
			}
			loc := app.now().Location()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RECORDED\tSERVICE\tDAY\tTIME\tLEVEL\tWAIT\tSOURCE")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d min\t%s\n",
					r.RecordedAt.In(loc).Format("2006-01-02 15:04"),
					r.Service, r.Day, r.Time, r.CrowdLevel, r.EstimatedWaitMinutes, r.Source)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of predictions to show")
	cmd.AddCommand(newHistoryStatsCmd(app))

	return cmd
}

func newHistoryStatsCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Per-service usage over the last few days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Reader == nil {
				return errNoHistoryStore
			}
			since := domain.StatsWindowStart(app.now(), days)
			stats, err := app.Reader.GetUsageStats(cmd.Context(), since)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleHeader.Render("Campus usage since "+since.Format("Mon Jan 2, 2006")))
			if len(stats) == 0 {
				fmt.Fprintln(out, "No usage recorded yet.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tREQUESTS\tAVG WAIT\tLOW\tMEDIUM\tHIGH")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%d\t%.1f min\t%d\t%d\t%d\n",
					s.Service, s.Count, s.AvgWait, s.LowCount, s.MediumCount, s.HighCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Size of the window in days")

	return cmd
}
