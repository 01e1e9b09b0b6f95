// Package telemetry records per-request stage timings and operation counters
// for the suggestion pipeline.
//
// A Recorder belongs to exactly one request. It travels through the call
// chain in the context (see WithRecorder and FromContext) and is never shared
// between requests. A nil *Recorder is valid: every method becomes a no-op,
// so code paths that run without profiling pay nothing for it.
package telemetry

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/windoze95/saltybytes-chef/internal/logger"
	"go.uber.org/zap"
)

// Counter names understood by Recorder.Inc.
const (
	CounterLLMCalls    = "llm_calls"
	CounterSearchCalls = "search_calls"
	CounterCacheHits   = "cache_hits"
	CounterCacheMisses = "cache_misses"
	CounterErrors      = "errors"
)

// Counters holds the operation counts of one request.
type Counters struct {
	LLMCalls    int `json:"llm_calls"`
	SearchCalls int `json:"search_calls"`
	CacheHits   int `json:"cache_hits"`
	CacheMisses int `json:"cache_misses"`
	Errors      int `json:"errors"`
}

// StageRecord is one finished, timed unit of work.
type StageRecord struct {
	Name       string                 `json:"name"`
	DurationMS float64                `json:"duration_ms"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// Summary is the report produced at the end of a request.
type Summary struct {
	Stages   []StageRecord `json:"stages"`
	TotalMS  float64       `json:"total_ms"`
	WallMS   float64       `json:"wall_ms"`
	Slowest  string        `json:"slowest"`
	Counters Counters      `json:"counters"`
}

// Recorder collects stages and counters for a single request.
type Recorder struct {
	mu       sync.Mutex
	start    time.Time
	stages   []StageRecord
	counters Counters
}

// New returns a Recorder whose wall clock starts now.
func New() *Recorder {
	return &Recorder{start: time.Now()}
}

// Stage is an open timing scope returned by Recorder.Begin.
type Stage struct {
	rec      *Recorder
	name     string
	start    time.Time
	metadata map[string]interface{}
	once     sync.Once
}

// Begin opens a named stage. The stage is recorded when End is called.
func (r *Recorder) Begin(name string, metadata map[string]interface{}) *Stage {
	if r == nil {
		return nil
	}
	meta := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	return &Stage{rec: r, name: name, start: time.Now(), metadata: meta}
}

// Set attaches a metadata value to an open stage.
func (s *Stage) Set(key string, value interface{}) {
	if s == nil {
		return
	}
	s.rec.mu.Lock()
	s.metadata[key] = value
	s.rec.mu.Unlock()
}

// End closes the stage and appends it to the recorder. Calling End more than
// once records the stage only the first time.
func (s *Stage) End() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Get().Warn("telemetry: failed to record stage", zap.String("stage", s.name), zap.Any("panic", rec))
			}
		}()

		elapsed := time.Since(s.start)
		s.rec.mu.Lock()
		s.rec.stages = append(s.rec.stages, StageRecord{
			Name:       s.name,
			DurationMS: float64(elapsed) / float64(time.Millisecond),
			Metadata:   s.metadata,
		})
		s.rec.mu.Unlock()

		logger.Get().Debug("profile stage",
			zap.String("stage", s.name),
			zap.Duration("duration", elapsed),
			zap.Any("metadata", s.metadata),
		)
	})
}

// Inc increments a named counter by one. Unknown names are ignored.
func (r *Recorder) Inc(name string) {
	r.Add(name, 1)
}

// Add increments a named counter by n. Unknown names are ignored.
func (r *Recorder) Add(name string, n int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch name {
	case CounterLLMCalls:
		r.counters.LLMCalls += n
	case CounterSearchCalls:
		r.counters.SearchCalls += n
	case CounterCacheHits:
		r.counters.CacheHits += n
	case CounterCacheMisses:
		r.counters.CacheMisses += n
	case CounterErrors:
		r.counters.Errors += n
	}
}

// Counters returns a snapshot of the current counters.
func (r *Recorder) Counters() Counters {
	if r == nil {
		return Counters{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}

// Wall returns the time elapsed since the recorder was created.
func (r *Recorder) Wall() time.Duration {
	if r == nil {
		return 0
	}
	return time.Since(r.start)
}

// Summary returns the report of everything recorded so far. Durations are
// rounded to one decimal place.
func (r *Recorder) Summary() Summary {
	if r == nil {
		return Summary{Stages: []StageRecord{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := Summary{
		Stages:   make([]StageRecord, 0, len(r.stages)),
		WallMS:   round1(float64(time.Since(r.start)) / float64(time.Millisecond)),
		Counters: r.counters,
	}

	var total, slowest float64
	for i, st := range r.stages {
		total += st.DurationMS
		if i == 0 || st.DurationMS > slowest {
			slowest = st.DurationMS
			summary.Slowest = st.Name
		}
		meta := make(map[string]interface{}, len(st.Metadata))
		for k, v := range st.Metadata {
			meta[k] = v
		}
		summary.Stages = append(summary.Stages, StageRecord{
			Name:       st.Name,
			DurationMS: round1(st.DurationMS),
			Metadata:   meta,
		})
	}
	summary.TotalMS = round1(total)
	return summary
}

// Table renders the summary as a fixed-width performance profile.
func (s Summary) Table() string {
	if len(s.Stages) == 0 {
		return "No profiling data collected."
	}

	rule := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nPERFORMANCE PROFILE\n%s\n", rule, rule)
	fmt.Fprintf(&b, "%-35s %15s %8s\n%s\n", "Stage", "Duration (ms)", "%", thin)
	for _, st := range s.Stages {
		pct := 0.0
		if s.TotalMS > 0 {
			pct = st.DurationMS / s.TotalMS * 100
		}
		marker := ""
		if st.Name == s.Slowest {
			marker = " <<<"
		}
		fmt.Fprintf(&b, "%-35s %15.1f %7.1f%%%s\n", st.Name, st.DurationMS, pct, marker)
	}
	fmt.Fprintf(&b, "%s\n%-35s %15.1f\n%-35s %15.1f\n%s\n", thin, "TOTAL (stages)", s.TotalMS, "WALL CLOCK", s.WallMS, rule)
	fmt.Fprintf(&b, "\nCOUNTERS:\n")
	fmt.Fprintf(&b, "  LLM calls:      %d\n", s.Counters.LLMCalls)
	fmt.Fprintf(&b, "  Search calls:   %d\n", s.Counters.SearchCalls)
	fmt.Fprintf(&b, "  Cache hits:     %d\n", s.Counters.CacheHits)
	fmt.Fprintf(&b, "  Cache misses:   %d\n", s.Counters.CacheMisses)
	fmt.Fprintf(&b, "  Errors:         %d\n", s.Counters.Errors)
	fmt.Fprintf(&b, "\nSlowest stage: %s\n", s.Slowest)
	return b.String()
}

type recorderKey struct{}

// WithRecorder returns a copy of ctx carrying r.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// FromContext returns the recorder carried by ctx, or nil.
func FromContext(ctx context.Context) *Recorder {
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}

// Begin opens a stage on the recorder carried by ctx.
func Begin(ctx context.Context, name string, metadata map[string]interface{}) *Stage {
	return FromContext(ctx).Begin(name, metadata)
}

// Inc increments a counter on the recorder carried by ctx.
func Inc(ctx context.Context, name string) {
	FromContext(ctx).Inc(name)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
