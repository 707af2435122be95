package digest

import (
	"campuspulse/internal/config"
	slackbot "campuspulse/internal/integrations/slack"
)

type Config = config.Config
type Predictor = slackbot.Predictor

var resolveUserIDs = slackbot.ResolveUserIDs
