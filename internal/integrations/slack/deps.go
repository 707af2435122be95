package slackbot

import (
	"campuspulse/internal/config"
	"campuspulse/internal/domain"
)

type Config = config.Config
type PredictionRequest = domain.PredictionRequest
type PredictionResult = domain.PredictionResult
