// Package runlog persists the append-only record of a provisioning run.
// One entry per step result, flushed to durable storage as it happens, so
// a crash mid-run leaves a usable partial record.
package runlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoistlabs/hoist/internal/domain/execution"
)

// Entry is one recorded step outcome. Secrets never appear here: output
// is scrubbed before it reaches the recorder.
type Entry struct {
	RunID      string    `json:"runId"`
	StepID     string    `json:"stepId"`
	Status     string    `json:"status"`
	SkipReason string    `json:"skipReason,omitempty"`
	StartTime  time.Time `json:"startTime"`
	DurationMs int64     `json:"durationMs"`
	Attempts   int       `json:"attempts,omitempty"`
	Output     string    `json:"truncatedOutput,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// entryFromResult converts an execution result to a log entry.
func entryFromResult(runID string, result execution.Result) Entry {
	entry := Entry{
		RunID:      runID,
		StepID:     result.StepID().String(),
		Status:     result.Status().String(),
		SkipReason: string(result.SkipReason()),
		StartTime:  result.StartedAt().UTC(),
		DurationMs: result.Duration().Milliseconds(),
		Attempts:   result.Attempts(),
		Output:     result.Output(),
	}
	if err := result.Error(); err != nil {
		entry.Error = err.Error()
	}
	return entry
}

// FileLog appends JSONL entries to one file per run and syncs after every
// write.
type FileLog struct {
	mu      sync.Mutex
	runID   string
	path    string
	file    *os.File
	results []execution.Result
}

// NewFileLog opens a log file for a fresh run under dir.
func NewFileLog(dir string) (*FileLog, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating run log directory: %w", err)
	}

	runID := uuid.NewString()
	path := filepath.Join(dir, fmt.Sprintf("run-%s-%s.jsonl",
		time.Now().UTC().Format("20060102-150405"), runID[:8]))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}

	return &FileLog{runID: runID, path: path, file: file}, nil
}

// RunID returns the unique identifier of this run.
func (l *FileLog) RunID() string {
	return l.runID
}

// Path returns the log file location for the final report.
func (l *FileLog) Path() string {
	return l.path
}

// Record appends a result and flushes it to disk synchronously.
func (l *FileLog) Record(_ context.Context, result execution.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(entryFromResult(l.runID, result))
	if err != nil {
		return fmt.Errorf("marshaling run log entry: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing run log entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("syncing run log: %w", err)
	}

	l.results = append(l.results, result)
	return nil
}

// Results returns the recorded results in order.
func (l *FileLog) Results() []execution.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]execution.Result, len(l.results))
	copy(out, l.results)
	return out
}

// Close releases the underlying file.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// MemoryLog records results in memory, for tests and dry paths.
type MemoryLog struct {
	mu      sync.Mutex
	runID   string
	entries []Entry
	results []execution.Result
}

// NewMemoryLog creates an in-memory recorder.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{runID: uuid.NewString()}
}

// Record appends a result.
func (l *MemoryLog) Record(_ context.Context, result execution.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entryFromResult(l.runID, result))
	l.results = append(l.results, result)
	return nil
}

// Entries returns the recorded entries in order.
func (l *MemoryLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Results returns the recorded results in order.
func (l *MemoryLog) Results() []execution.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]execution.Result, len(l.results))
	copy(out, l.results)
	return out
}

// Ensure recorders implement execution.Recorder.
var (
	_ execution.Recorder = (*FileLog)(nil)
	_ execution.Recorder = (*MemoryLog)(nil)
)
