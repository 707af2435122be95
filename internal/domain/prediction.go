package domain

// CrowdLevel is the ordinal congestion class shown next to every forecast.
type CrowdLevel string

const (
	CrowdLow    CrowdLevel = "Low"
	CrowdMedium CrowdLevel = "Medium"
	CrowdHigh   CrowdLevel = "High"
)

// Rank orders levels for display (Low < Medium < High). Labels outside the
// known set rank 0.
func (l CrowdLevel) Rank() int {
	switch l {
	case CrowdLow:
		return 1
	case CrowdMedium:
		return 2
	case CrowdHigh:
		return 3
	default:
		return 0
	}
}

// WaitRange is a closed interval of minutes, Min <= Max.
type WaitRange struct {
	Min int
	Max int
}

func (r WaitRange) Contains(minutes int) bool {
	return minutes >= r.Min && minutes <= r.Max
}

// PredictionRequest is built once per input change and discarded after a
// single prediction.
type PredictionRequest struct {
	Service string
	Day     string
	Time    string
	Context string
}

// Source tells where a PredictionResult came from. It is kept out of the
// JSON shape so oracle and rule results serialise identically.
type Source string

const (
	SourceRules  Source = "rules"
	SourceOracle Source = "oracle"
)

type PredictionResult struct {
	CrowdLevel           CrowdLevel `json:"crowdLevel"`
	EstimatedWaitMinutes int        `json:"estimatedWaitMinutes"`
	Confidence           float64    `json:"confidence"`
	Reasoning            string     `json:"reasoning"`

	Source Source `json:"-"`
}
