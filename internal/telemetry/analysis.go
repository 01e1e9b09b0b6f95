package telemetry

import (
	"fmt"
	"strings"
)

// Latency budgets for one suggestion, in milliseconds.
const (
	GoodTotalMS    = 15000
	OKTotalMS      = 25000
	SlowStageMS    = 10000
	SlowSearchMS   = 4000
	searchStagePfx = "search"
)

// Status grades a suggestion's total stage time.
type Status string

const (
	StatusGood Status = "GOOD"
	StatusOK   Status = "OK"
	StatusSlow Status = "SLOW"
)

// Analysis grades a Summary against the latency budgets.
type Analysis struct {
	TotalMS         float64  `json:"total_ms"`
	Status          Status   `json:"status"`
	Recommendations []string `json:"recommendations"`
}

// Analyze grades the summary and lists what exceeded its budget. A run
// within every budget gets a single all-clear recommendation.
func (s Summary) Analyze() Analysis {
	a := Analysis{TotalMS: s.TotalMS, Status: StatusSlow}
	switch {
	case s.TotalMS < GoodTotalMS:
		a.Status = StatusGood
	case s.TotalMS < OKTotalMS:
		a.Status = StatusOK
	}

	if s.Counters.LLMCalls > 1 {
		a.Recommendations = append(a.Recommendations,
			fmt.Sprintf("WARNING: %d LLM calls detected. Should be 1 maximum.", s.Counters.LLMCalls))
	}
	for _, st := range s.Stages {
		if st.DurationMS > SlowStageMS {
			a.Recommendations = append(a.Recommendations, fmt.Sprintf("SLOW: %s took %.0fms", st.Name, st.DurationMS))
		}
	}
	for _, st := range s.Stages {
		if !strings.HasPrefix(st.Name, searchStagePfx) {
			continue
		}
		if st.DurationMS > SlowSearchMS {
			a.Recommendations = append(a.Recommendations, "Search timeout may be too long or search is not responding")
		}
		break
	}

	if len(a.Recommendations) == 0 {
		a.Recommendations = []string{"All stages within expected limits"}
	}
	return a
}
