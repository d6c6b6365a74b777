package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, data string) string {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "metrics.jsonl")
	require.NoError(t, os.WriteFile(logPath, []byte(data), 0644))
	return logPath
}

func TestAnalyzerAnalyze(t *testing.T) {
	now := time.Now().UTC()
	recentTS := now.Add(-1 * time.Hour).Format(time.RFC3339)
	oldTS := now.Add(-25 * time.Hour).Format(time.RFC3339)

	logPath := writeLog(t, `{"ts":"`+recentTS+`","event":"file_chunked","run_id":"r2","path":"a.py","strategy":"python","chunks":3,"lines":40,"duration_ms":12}
{"ts":"`+recentTS+`","event":"file_chunked","run_id":"r2","path":"b.md","strategy":"markdown","chunks":2,"lines":10,"duration_ms":90}
{"ts":"`+recentTS+`","event":"file_chunked","run_id":"r2","path":"c.js","strategy":"grammar","chunks":1,"lines":5,"duration_ms":30}
{"ts":"`+recentTS+`","event":"file_skipped","run_id":"r2","path":"d.py"}
{"ts":"`+recentTS+`","event":"error","run_id":"r2","path":"bad.txt","message":"decode error"}
{"ts":"`+recentTS+`","event":"run_complete","run_id":"r2","files_seen":5}
not json at all
{"ts":"`+oldTS+`","event":"file_chunked","run_id":"r1","path":"old.py","strategy":"python","chunks":9,"lines":99,"duration_ms":500}
`)

	summary, err := NewAnalyzer(logPath).Analyze(24 * time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Runs)
	assert.Equal(t, 3, summary.FilesChunked) // Only recent events
	assert.Equal(t, 1, summary.FilesSkipped)
	assert.Equal(t, 6, summary.Chunks)
	assert.Equal(t, 55, summary.Lines)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, map[string]int{"python": 1, "markdown": 1, "grammar": 1}, summary.ByStrategy)

	require.Len(t, summary.Slowest, 3)
	assert.Equal(t, "b.md", summary.Slowest[0].Path)
	assert.Equal(t, "a.py", summary.Slowest[2].Path)
}

func TestAnalyzerFailedFiles(t *testing.T) {
	recentTS := time.Now().UTC().Add(-1 * time.Hour).Format(time.RFC3339)

	logPath := writeLog(t, `{"ts":"`+recentTS+`","event":"error","path":"bad.txt"}
{"ts":"`+recentTS+`","event":"error","path":"bad.txt"}
{"ts":"`+recentTS+`","event":"error","path":"broken.py"}
{"ts":"`+recentTS+`","event":"file_chunked","path":"ok.py"}
`)

	failed, err := NewAnalyzer(logPath).FailedFiles(24 * time.Hour)
	require.NoError(t, err)

	require.Len(t, failed, 2)
	assert.Equal(t, PathCount{Path: "bad.txt", Count: 2}, failed[0])
	assert.Equal(t, PathCount{Path: "broken.py", Count: 1}, failed[1])
}

func TestAnalyzerLastRun(t *testing.T) {
	ts := time.Now().UTC().Format(time.RFC3339)
	logPath := writeLog(t, `{"ts":"`+ts+`","event":"run_complete","run_id":"first","files_seen":1}
{"ts":"`+ts+`","event":"file_chunked","run_id":"second"}
{"ts":"`+ts+`","event":"run_complete","run_id":"second","files_seen":7,"errors":2}
`)

	last, err := NewAnalyzer(logPath).LastRun()
	require.NoError(t, err)
	assert.Equal(t, "second", last.RunID)
	assert.Equal(t, 7, last.FilesSeen)
	assert.Equal(t, 2, last.Errors)
}

func TestAnalyzerLastRunNone(t *testing.T) {
	_, err := NewAnalyzer(writeLog(t, "")).LastRun()
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestAnalyzerEmptyFile(t *testing.T) {
	summary, err := NewAnalyzer(writeLog(t, "")).Analyze(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.FilesChunked)
	assert.Empty(t, summary.Slowest)
}

func TestAnalyzerMissingFile(t *testing.T) {
	_, err := NewAnalyzer(filepath.Join(t.TempDir(), "nope.jsonl")).Analyze(time.Hour)
	assert.Error(t, err)
}
