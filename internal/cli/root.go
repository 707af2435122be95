package cli

import (
	"time"

	"github.com/spf13/cobra"

	"campuspulse/internal/catalog"
	"campuspulse/internal/config"
	"campuspulse/internal/history"
	"campuspulse/internal/storage"
)

// App holds what the commands need. Sink and Reader may be nil when no
// history store is configured.
type App struct {
	Config config.Config
	Engine Predictor
	Sink   *history.Sink
	Reader storage.Reader
	Menu   *catalog.Menu

	IsInteractive func() bool
	Now           func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}
	if a.Config.Location != nil {
		now = now.In(a.Config.Location)
	}
	return now
}

func (a *App) menu() *catalog.Menu {
	if a.Menu == nil {
		a.Menu = catalog.NewMenu(catalog.DefaultMenu())
	}
	return a.Menu
}

// NewRootCmd creates the top-level "campuspulse" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:          "campuspulse",
		Short:        "Campus crowd and wait-time forecasts",
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Sink.Wait()
		},
	}

	root.AddCommand(
		newPredictCmd(app),
		newForecastCmd(app),
		newHistoryCmd(app),
		newServeCmd(app),
		newWatchCmd(app),
	)

	return root
}
