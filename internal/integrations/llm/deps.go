package llm

import (
	"campuspulse/internal/config"
	"campuspulse/internal/domain"
	"campuspulse/internal/httpx"
)

type Config = config.Config
type CrowdLevel = domain.CrowdLevel

var externalHTTPClient = httpx.ExternalHTTPClient()
