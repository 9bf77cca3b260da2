package generator

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/xdocs/internal/logfields"
)

// Build outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Report summarizes one build.
type Report struct {
	BuildID        string
	Start          time.Time
	End            time.Time
	Duration       time.Duration
	Outcome        string
	ManifestHash   string
	Pages          int
	Assets         int
	Minified       int
	SassCompiled   bool
	SearchRecords  int
	StageDurations map[string]time.Duration
	// StageOrder lists the stages that ran, in order.
	StageOrder []string
	Err        error
}

func newReport(id string, start time.Time) *Report {
	return &Report{
		BuildID:        id,
		Start:          start,
		StageDurations: make(map[string]time.Duration),
	}
}

func (r *Report) recordStage(name StageName, d time.Duration) {
	r.StageDurations[string(name)] = d
	r.StageOrder = append(r.StageOrder, string(name))
}

func (r *Report) finish(end time.Time, err error) {
	r.End = end
	r.Duration = end.Sub(r.Start)
	r.Err = err
	r.Outcome = OutcomeSuccess
	if err != nil {
		r.Outcome = OutcomeFailed
	}
}

// ErrorText returns the build error message, or "".
func (r *Report) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// LogAttrs returns the report as structured log attributes.
func (r *Report) LogAttrs() []any {
	attrs := []any{
		logfields.BuildID(r.BuildID),
		slog.Int("pages", r.Pages),
		slog.Int("assets", r.Assets),
		slog.Int("search_records", r.SearchRecords),
		logfields.Duration(r.Duration),
	}
	for _, name := range r.StageOrder {
		attrs = append(attrs, slog.Float64(name+"_ms", float64(r.StageDurations[name].Microseconds())/1000))
	}
	return attrs
}
