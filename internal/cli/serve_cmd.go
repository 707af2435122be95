package cli

import (
	"errors"
	"log"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	"campuspulse/internal/digest"
	slackbot "campuspulse/internal/integrations/slack"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Slack bot and the daily digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if !cfg.SlackConfigured() {
				return errors.New("serve needs slack_bot_token and slack_app_token")
			}

			api := slack.New(
				cfg.SlackBotToken,
				slack.OptionAppLevelToken(cfg.SlackAppToken),
			)

			digest.StartScheduler(cfg, app.Engine, app.menu(), api)

			log.Println("Starting campus crowd bot...")
			bot := slackbot.NewBot(cfg, app.Engine, app.Sink, app.Reader, app.menu())
			return bot.Start(api)
		},
	}
}
