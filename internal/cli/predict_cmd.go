package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"campuspulse/internal/domain"
	"campuspulse/internal/forecast"
)

func newPredictCmd(app *App) *cobra.Command {
	var req PredictionRequest
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict crowd level and wait time for a campus service",
		Example: `  campuspulse predict --service Canteen --day Monday --time "12:30 PM"
  campuspulse predict --service Library --day today --time now --context "exam week"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Service == "" || req.Day == "" || req.Time == "" {
				if !app.interactive() {
					return errors.New("--service, --day and --time are required")
				}
				if err := predictForm(&req).Run(); err != nil {
					return err
				}
			}

			now := app.now()
			req.Day = domain.ResolveDay(req.Day, now)
			req.Time = forecast.ResolveClock(req.Time, now)

			result, err := app.Engine.Predict(cmd.Context(), req)
			if err != nil {
				return err
			}
			app.Sink.Record(req, result)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintln(out, formatPrediction(req, result))
			return nil
		},
	}

	addRequestFlags(cmd.Flags(), &req)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the prediction as JSON")

	return cmd
}

func addRequestFlags(fs *pflag.FlagSet, req *PredictionRequest) {
	fs.StringVarP(&req.Service, "service", "s", "", "Service name (Canteen, Library, Admin Office, Exam Cell)")
	fs.StringVarP(&req.Day, "day", "d", "", `Day of week, or "today"`)
	fs.StringVarP(&req.Time, "time", "t", "", `12-hour time such as "12:30 PM", or "now"`)
	fs.StringVarP(&req.Context, "context", "c", "", "Free-text context, e.g. \"exam week\"")
}

// predictForm asks for whatever the flags left out.
func predictForm(req *PredictionRequest) *huh.Form {
	services := make([]huh.Option[string], 0, len(domain.KnownServices))
	for _, svc := range domain.KnownServices {
		services = append(services, huh.NewOption(svc.String(), svc.String()))
	}
	if req.Service == "" {
		req.Service = domain.KnownServices[0].String()
	}
	if req.Day == "" {
		req.Day = domain.Weekdays[0]
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Service").
				Options(services...).
				Value(&req.Service),
			huh.NewSelect[string]().
				Title("Day").
				Options(huh.NewOptions(domain.Weekdays...)...).
				Value(&req.Day),
			huh.NewInput().
				Title("Time").
				Placeholder("12:30 PM").
				Value(&req.Time).
				Validate(validateClock),
			huh.NewInput().
				Title("Context (optional)").
				Placeholder("exam week").
				Value(&req.Context),
		),
	).WithShowHelp(false)
}

func validateClock(s string) error {
	if strings.EqualFold(strings.TrimSpace(s), "now") {
		return nil
	}
	_, err := forecast.ParseHour(s)
	return err
}

func formatPrediction(req PredictionRequest, r PredictionResult) string {
	var sb strings.Builder
	sb.WriteString(styleHeader.Render(fmt.Sprintf("%s · %s · %s", req.Service, req.Day, req.Time)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s  ~%d min wait  %s\n",
		levelBadge(r.CrowdLevel), r.EstimatedWaitMinutes,
		styleDim.Render(fmt.Sprintf("(%.0f%% confidence, %s)", r.Confidence*100, sourceLabel(r.Source)))))
	sb.WriteString(r.Reasoning)
	if strings.TrimSpace(req.Context) != "" {
		sb.WriteString("\n" + styleDim.Render("Context: "+req.Context))
	}
	return sb.String()
}

func sourceLabel(s domain.Source) string {
	if s == "" {
		return string(domain.SourceRules)
	}
	return string(s)
}
