package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"campuspulse/internal/domain"
	"campuspulse/internal/integrations/llm"
)

const defaultOracleTimeout = 8 * time.Second

// DefaultDemandItems is returned by ForecastDemand whenever the oracle is
// absent or gives nothing usable.
var DefaultDemandItems = []string{
	"South Indian Thali",
	"Hyderabadi Biryani",
	"Butter Masala Dosa",
	"Filtered Coffee",
	"Fresh Fruit Bowl",
}

var predictionSchema = []llm.Field{
	{Name: "crowdLevel", Type: "string"},
	{Name: "estimatedWaitMinutes", Type: "number"},
	{Name: "confidence", Type: "number"},
	{Name: "reasoning", Type: "string"},
}

// Oracle is an optional text source that may override rule results.
type Oracle interface {
	Complete(ctx context.Context, req OracleRequest) (string, error)
}

type Engine struct {
	oracle        Oracle
	campus        string
	oracleTimeout time.Duration
}

type Option func(*Engine)

func WithCampus(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.campus = name
		}
	}
}

func WithOracleTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.oracleTimeout = d
		}
	}
}

// NewEngine builds an engine; a nil oracle means rule-based predictions only.
func NewEngine(oracle Oracle, opts ...Option) *Engine {
	e := &Engine{
		oracle:        oracle,
		campus:        "CMRIT",
		oracleTimeout: defaultOracleTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) OracleEnabled() bool {
	return e.oracle != nil
}

// Predict never fails for oracle problems; only a malformed time is
// reported, wrapped as ErrInvalidTimeFormat.
func (e *Engine) Predict(ctx context.Context, req PredictionRequest) (PredictionResult, error) {
	hour, err := ParseHour(req.Time)
	if err != nil {
		return PredictionResult{}, err
	}

	svc := domain.ClassifyService(req.Service)
	level, wait := Classify(svc, req.Day, hour, req.Context)
	result := PredictionResult{
		CrowdLevel:           level,
		EstimatedWaitMinutes: EstimateWait(wait),
		Confidence:           Confidence(req.Context),
		Reasoning:            Reasoning(svc, req.Day, req.Time, level, req.Context),
		Source:               domain.SourceRules,
	}

	if e.oracle == nil {
		return result, nil
	}
	override, err := e.askOracle(ctx, req)
	if err != nil {
		log.Printf("forecast oracle fallback service=%q day=%s time=%q (non-fatal): %v", req.Service, req.Day, req.Time, err)
		return result, nil
	}
	return override, nil
}

// maxOracleWait bounds an accepted oracle wait so it always fits an int.
const maxOracleWait = math.MaxInt32

// waitMinutes accepts a JSON number or a numeric string ("25").
type waitMinutes float64

func (w *waitMinutes) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*w = waitMinutes(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("estimatedWaitMinutes: want number, got %s", data)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("estimatedWaitMinutes: %q is not a number", s)
	}
	*w = waitMinutes(n)
	return nil
}

type oracleReply struct {
	CrowdLevel           string      `json:"crowdLevel"`
	EstimatedWaitMinutes waitMinutes `json:"estimatedWaitMinutes"`
	Confidence           float64     `json:"confidence"`
	Reasoning            string      `json:"reasoning"`
}

func validateReply(r oracleReply) error {
	if r.CrowdLevel == "" {
		return fmt.Errorf("missing crowdLevel")
	}
	wait := float64(r.EstimatedWaitMinutes)
	switch {
	case wait == 0:
		return fmt.Errorf("missing estimatedWaitMinutes")
	case math.IsNaN(wait) || math.IsInf(wait, 0):
		return fmt.Errorf("estimatedWaitMinutes not finite")
	case wait < 0 || wait > maxOracleWait:
		return fmt.Errorf("estimatedWaitMinutes %g out of range", wait)
	}
	return nil
}

func (e *Engine) askOracle(ctx context.Context, req PredictionRequest) (result PredictionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("oracle panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.oracleTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Predict the crowd and demand for %s at %s campus on %s at %s. Context: %s. Return a JSON object with: crowdLevel (Low/Medium/High), estimatedWaitMinutes (number), confidence (0-1 float), and reasoning (short string).",
		req.Service, e.campus, req.Day, req.Time, req.Context,
	)
	text, err := e.oracle.Complete(ctx, OracleRequest{Task: "predict", Prompt: prompt, Schema: predictionSchema})
	if err != nil {
		return PredictionResult{}, err
	}
	reply, err := llm.ExtractJSON[oracleReply](text, validateReply)
	if err != nil {
		return PredictionResult{}, err
	}
	return PredictionResult{
		CrowdLevel:           llm.CanonicalLevel(reply.CrowdLevel),
		EstimatedWaitMinutes: int(math.Floor(float64(reply.EstimatedWaitMinutes) + 0.5)),
		Confidence:           reply.Confidence,
		Reasoning:            reply.Reasoning,
		Source:               domain.SourceOracle,
	}, nil
}

// ForecastDemand lists the canteen items expected to sell most on day. It
// always returns at least one item.
func (e *Engine) ForecastDemand(ctx context.Context, day string) []string {
	if e.oracle != nil {
		if items, err := e.askDemand(ctx, day); err != nil {
			log.Printf("forecast demand fallback day=%s (non-fatal): %v", day, err)
		} else if len(items) > 0 {
			return items
		}
	}
	return append([]string(nil), DefaultDemandItems...)
}

func (e *Engine) askDemand(ctx context.Context, day string) (items []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("oracle panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.oracleTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"List 5 high-demand food items for a university canteen on %s considering student preferences and typical college schedules. Return as a plain comma-separated list.",
		day,
	)
	text, err := e.oracle.Complete(ctx, OracleRequest{Task: "demand", Prompt: prompt})
	if err != nil {
		return nil, err
	}
	return llm.SplitList(text), nil
}
