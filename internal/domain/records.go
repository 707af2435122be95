package domain

import "time"

// PredictionRecord is one row of prediction history.
type PredictionRecord struct {
	ID                   string
	Service              string
	Day                  string
	Time                 string
	CrowdLevel           string
	EstimatedWaitMinutes int
	Confidence           float64
	Reasoning            string
	Context              string
	Source               string
	RecordedAt           time.Time
}

// UsageRecord is one row of service usage.
type UsageRecord struct {
	ID          string
	Service     string
	Day         string
	Time        string
	CrowdLevel  string
	WaitMinutes int
	RecordedAt  time.Time
}

// ServiceUsageStat aggregates usage rows for one service.
type ServiceUsageStat struct {
	Service     string
	Count       int
	AvgWait     float64
	LowCount    int
	MediumCount int
	HighCount   int
}
