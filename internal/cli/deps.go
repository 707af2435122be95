package cli

import (
	"campuspulse/internal/domain"
	slackbot "campuspulse/internal/integrations/slack"
)

type CrowdLevel = domain.CrowdLevel
type PredictionRequest = domain.PredictionRequest
type PredictionResult = domain.PredictionResult
type Predictor = slackbot.Predictor
