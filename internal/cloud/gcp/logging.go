package gcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/logging"
	"google.golang.org/api/option"
)

// Severity levels for structured logs
type Severity string

const (
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// LogEntry is one structured log line.
type LogEntry struct {
	Severity  Severity          `json:"severity"`
	Message   string            `json:"message"`
	Timestamp string            `json:"timestamp"`
	RunID     string            `json:"run_id,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Logger is the run logger used by the CLI and the comment pipeline.
type Logger interface {
	Info(msg string)
	Infof(format string, args ...interface{})
	Warning(msg string)
	Warningf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	Flush() error
	Close() error
}

// Redactor strips credentials from a message before it is emitted.
type Redactor interface {
	Scrub(input string) string
}

// entryWriter is satisfied by *logging.Logger.
type entryWriter interface {
	Log(e logging.Entry)
	Flush() error
}

// CloudLogger writes one JSON object per line in the structured format
// Cloud Logging understands, and optionally mirrors each entry to the
// Cloud Logging API.
type CloudLogger struct {
	writer   io.Writer
	runID    string
	labels   map[string]string
	redactor Redactor
	remote   entryWriter
	closeFn  func() error
	mu       sync.Mutex
	closed   bool
}

// CloudLoggerOption allows configuring the CloudLogger
type CloudLoggerOption func(*CloudLogger)

// WithWriter sets the local output writer (default os.Stderr).
func WithWriter(w io.Writer) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.writer = w
	}
}

// WithRunID tags every entry with the given run ID.
func WithRunID(runID string) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.runID = runID
		if runID != "" {
			cl.labels["run_id"] = runID
		}
	}
}

// WithLabels adds custom labels to all log entries
func WithLabels(labels map[string]string) CloudLoggerOption {
	return func(cl *CloudLogger) {
		for k, v := range labels {
			cl.labels[k] = v
		}
	}
}

// WithRedactor scrubs every message before it is written.
func WithRedactor(r Redactor) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.redactor = r
	}
}

func withRemote(w entryWriter, closeFn func() error) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.remote = w
		cl.closeFn = closeFn
	}
}

// NewCloudLogger creates a CloudLogger. Without options it writes to stderr.
func NewCloudLogger(opts ...CloudLoggerOption) *CloudLogger {
	cl := &CloudLogger{
		writer: os.Stderr,
		labels: map[string]string{
			"component": "ytcomments",
		},
	}

	for _, opt := range opts {
		opt(cl)
	}

	return cl
}

// Log writes a structured log entry
func (cl *CloudLogger) Log(severity Severity, message string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed {
		return
	}

	if cl.redactor != nil {
		message = cl.redactor.Scrub(message)
	}

	now := time.Now().UTC()
	entry := LogEntry{
		Severity:  severity,
		Message:   message,
		Timestamp: now.Format(time.RFC3339Nano),
		RunID:     cl.runID,
		Labels:    cl.labels,
	}

	if cl.writer != nil {
		fmt.Fprintln(cl.writer, FormatEntry(entry))
	}

	if cl.remote != nil {
		cl.remote.Log(logging.Entry{
			Timestamp: now,
			Severity:  logging.ParseSeverity(string(severity)),
			Payload:   message,
			Labels:    cl.labels,
		})
	}
}

func (cl *CloudLogger) Info(msg string)    { cl.Log(SeverityInfo, msg) }
func (cl *CloudLogger) Warning(msg string) { cl.Log(SeverityWarning, msg) }
func (cl *CloudLogger) Error(msg string)   { cl.Log(SeverityError, msg) }

func (cl *CloudLogger) Infof(format string, args ...interface{}) {
	cl.Log(SeverityInfo, fmt.Sprintf(format, args...))
}

func (cl *CloudLogger) Warningf(format string, args ...interface{}) {
	cl.Log(SeverityWarning, fmt.Sprintf(format, args...))
}

func (cl *CloudLogger) Errorf(format string, args ...interface{}) {
	cl.Log(SeverityError, fmt.Sprintf(format, args...))
}

// Flush pushes buffered entries to Cloud Logging, if configured.
func (cl *CloudLogger) Flush() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed || cl.remote == nil {
		return nil
	}
	return cl.remote.Flush()
}

// Close flushes remaining entries and releases the Cloud Logging client.
// Entries logged after Close are dropped.
func (cl *CloudLogger) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed {
		return nil
	}
	cl.closed = true

	if cl.remote == nil {
		return nil
	}
	if err := cl.remote.Flush(); err != nil {
		if cl.closeFn != nil {
			_ = cl.closeFn()
		}
		return fmt.Errorf("failed to flush cloud logs: %w", err)
	}
	if cl.closeFn != nil {
		return cl.closeFn()
	}
	return nil
}

// FormatEntry renders a LogEntry as a single JSON line.
func FormatEntry(entry LogEntry) string {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"severity":"ERROR","message":"failed to marshal log entry: %v"}`, err)
	}
	return string(data)
}

// TextLogger writes human-readable "[SEVERITY] message" lines.
type TextLogger struct {
	logger   *log.Logger
	redactor Redactor
}

// NewTextLogger creates a TextLogger on w. A nil redactor disables scrubbing.
func NewTextLogger(w io.Writer, redactor Redactor) *TextLogger {
	return &TextLogger{
		logger:   log.New(w, "", log.LstdFlags),
		redactor: redactor,
	}
}

func (tl *TextLogger) log(severity Severity, msg string) {
	if tl.redactor != nil {
		msg = tl.redactor.Scrub(msg)
	}
	tl.logger.Printf("[%s] %s", severity, msg)
}

func (tl *TextLogger) Info(msg string)    { tl.log(SeverityInfo, msg) }
func (tl *TextLogger) Warning(msg string) { tl.log(SeverityWarning, msg) }
func (tl *TextLogger) Error(msg string)   { tl.log(SeverityError, msg) }

func (tl *TextLogger) Infof(format string, args ...interface{}) {
	tl.log(SeverityInfo, fmt.Sprintf(format, args...))
}

func (tl *TextLogger) Warningf(format string, args ...interface{}) {
	tl.log(SeverityWarning, fmt.Sprintf(format, args...))
}

func (tl *TextLogger) Errorf(format string, args ...interface{}) {
	tl.log(SeverityError, fmt.Sprintf(format, args...))
}

// Flush is a no-op (writes are synchronous).
func (tl *TextLogger) Flush() error { return nil }

// Close is a no-op.
func (tl *TextLogger) Close() error { return nil }

// LoggerConfig selects and configures the run logger.
type LoggerConfig struct {
	Format     string // "text" or "json"
	GCPProject string // mirror entries to Cloud Logging when set
	LogName    string
	RunID      string
	Labels     map[string]string
	Writer     io.Writer
	Redactor   Redactor
}

// NewLogger builds the logger described by cfg. A GCP project forces the
// JSON format, since Cloud Logging entries are structured.
func NewLogger(ctx context.Context, cfg LoggerConfig, opts ...option.ClientOption) (Logger, error) {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	if cfg.GCPProject == "" && cfg.Format != "json" {
		return NewTextLogger(w, cfg.Redactor), nil
	}

	loggerOpts := []CloudLoggerOption{
		WithWriter(w),
		WithRunID(cfg.RunID),
		WithLabels(cfg.Labels),
	}
	if cfg.Redactor != nil {
		loggerOpts = append(loggerOpts, WithRedactor(cfg.Redactor))
	}

	if cfg.GCPProject != "" {
		client, err := logging.NewClient(ctx, "projects/"+cfg.GCPProject, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud logging client: %w", err)
		}
		logName := cfg.LogName
		if logName == "" {
			logName = "ytcomments"
		}
		loggerOpts = append(loggerOpts, withRemote(client.Logger(logName), client.Close))
	}

	return NewCloudLogger(loggerOpts...), nil
}

var (
	_ Logger = (*CloudLogger)(nil)
	_ Logger = (*TextLogger)(nil)
)
