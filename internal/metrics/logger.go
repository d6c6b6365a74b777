// Package metrics provides JSONL event logging for chunking runs.
package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event types written to the log.
const (
	EventFileChunked = "file_chunked"
	EventFileSkipped = "file_skipped"
	EventRunComplete = "run_complete"
	EventError       = "error"
)

// Event is one line of the metrics log.
type Event struct {
	TS         time.Time `json:"ts"`
	Event      string    `json:"event"`
	RunID      string    `json:"run_id,omitempty"`
	Repo       string    `json:"repo,omitempty"`
	Path       string    `json:"path,omitempty"`
	Strategy   string    `json:"strategy,omitempty"`
	Chunks     int       `json:"chunks,omitempty"`
	Lines      int       `json:"lines,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Message    string    `json:"message,omitempty"`

	// run_complete only
	FilesSeen    int `json:"files_seen,omitempty"`
	FilesChunked int `json:"files_chunked,omitempty"`
	FilesSkipped int `json:"files_skipped,omitempty"`
	Errors       int `json:"errors,omitempty"`
}

// Logger writes metrics events to JSONL file. A nil *Logger discards events.
type Logger struct {
	file *os.File
	mu   sync.Mutex
	now  func() time.Time
}

// NewLogger creates a new metrics logger, creating parent directories.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Logger{file: file, now: time.Now}, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) log(e Event) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e.TS = l.now().UTC()
	line, err := json.Marshal(e)
	if err != nil {
		return
	}
	l.file.Write(append(line, '\n'))
}

// LogFileChunked logs a file that was chunked and written.
func (l *Logger) LogFileChunked(runID, repo, path, strategy string, chunks, lines int, took time.Duration) {
	l.log(Event{
		Event:      EventFileChunked,
		RunID:      runID,
		Repo:       repo,
		Path:       path,
		Strategy:   strategy,
		Chunks:     chunks,
		Lines:      lines,
		DurationMs: took.Milliseconds(),
	})
}

// LogFileSkipped logs a file whose content hash was unchanged.
func (l *Logger) LogFileSkipped(runID, repo, path string) {
	l.log(Event{Event: EventFileSkipped, RunID: runID, Repo: repo, Path: path})
}

// RunTotals are the counters reported when a run ends.
type RunTotals struct {
	FilesSeen    int
	FilesChunked int
	FilesSkipped int
	Chunks       int
	Lines        int
	Errors       int
}

// LogRunComplete logs the end of a batch run.
func (l *Logger) LogRunComplete(runID, repo string, totals RunTotals, took time.Duration) {
	l.log(Event{
		Event:        EventRunComplete,
		RunID:        runID,
		Repo:         repo,
		Chunks:       totals.Chunks,
		Lines:        totals.Lines,
		DurationMs:   took.Milliseconds(),
		FilesSeen:    totals.FilesSeen,
		FilesChunked: totals.FilesChunked,
		FilesSkipped: totals.FilesSkipped,
		Errors:       totals.Errors,
	})
}

// LogError logs an error event.
func (l *Logger) LogError(runID, path, message string) {
	l.log(Event{Event: EventError, RunID: runID, Path: path, Message: message})
}
