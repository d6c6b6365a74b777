package metrics

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"sort"
	"time"
)

// ErrNoRuns is returned by LastRun when the log has no completed run.
var ErrNoRuns = errors.New("no completed runs")

// Analyzer processes metrics logs.
type Analyzer struct {
	logPath string
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(logPath string) *Analyzer {
	return &Analyzer{logPath: logPath}
}

// Summary contains aggregated metrics.
type Summary struct {
	Period       string         `json:"period"`
	Runs         int            `json:"runs"`
	FilesChunked int            `json:"files_chunked"`
	FilesSkipped int            `json:"files_skipped"`
	Chunks       int            `json:"chunks"`
	Lines        int            `json:"lines"`
	Errors       int            `json:"errors"`
	ByStrategy   map[string]int `json:"by_strategy"`
	Slowest      []FileTiming   `json:"slowest"`
}

// FileTiming is a chunked file with how long it took.
type FileTiming struct {
	Path       string `json:"path"`
	DurationMs int64  `json:"duration_ms"`
}

// PathCount represents a path with its count.
type PathCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Analyze processes logs for a time period.
func (a *Analyzer) Analyze(since time.Duration) (*Summary, error) {
	summary := &Summary{
		Period:     since.String(),
		ByStrategy: make(map[string]int),
	}

	err := a.scan(since, func(e Event) {
		switch e.Event {
		case EventRunComplete:
			summary.Runs++
		case EventFileChunked:
			summary.FilesChunked++
			summary.Chunks += e.Chunks
			summary.Lines += e.Lines
			summary.ByStrategy[e.Strategy]++
			summary.Slowest = append(summary.Slowest, FileTiming{Path: e.Path, DurationMs: e.DurationMs})
		case EventFileSkipped:
			summary.FilesSkipped++
		case EventError:
			summary.Errors++
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summary.Slowest, func(i, j int) bool {
		return summary.Slowest[i].DurationMs > summary.Slowest[j].DurationMs
	})
	if len(summary.Slowest) > 10 {
		summary.Slowest = summary.Slowest[:10]
	}

	return summary, nil
}

// FailedFiles returns paths that logged errors, most frequent first.
func (a *Analyzer) FailedFiles(since time.Duration) ([]PathCount, error) {
	counts := make(map[string]int)
	err := a.scan(since, func(e Event) {
		if e.Event == EventError {
			counts[e.Path]++
		}
	})
	if err != nil {
		return nil, err
	}

	var result []PathCount
	for p, c := range counts {
		result = append(result, PathCount{Path: p, Count: c})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Path < result[j].Path
	})

	return result, nil
}

// LastRun returns the most recent run_complete event.
func (a *Analyzer) LastRun() (*Event, error) {
	var last *Event
	err := a.scan(0, func(e Event) {
		if e.Event == EventRunComplete {
			last = &e
		}
	})
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, ErrNoRuns
	}
	return last, nil
}

// scan calls fn for every well-formed event newer than since. A zero since
// means no cutoff.
func (a *Analyzer) scan(since time.Duration, fn func(Event)) error {
	file, err := os.Open(a.logPath)
	if err != nil {
		return err
	}
	defer file.Close()

	var cutoff time.Time
	if since > 0 {
		cutoff = time.Now().Add(-since)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if e.TS.IsZero() || e.TS.Before(cutoff) {
			continue
		}
		fn(e)
	}

	return scanner.Err()
}
