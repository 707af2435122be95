package forecast

import (
	"campuspulse/internal/domain"
	"campuspulse/internal/integrations/llm"
)

type CrowdLevel = domain.CrowdLevel
type WaitRange = domain.WaitRange
type PredictionRequest = domain.PredictionRequest
type PredictionResult = domain.PredictionResult
type Service = domain.Service

type OracleRequest = llm.Request
