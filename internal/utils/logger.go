package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLogger writes leveled log lines to stdout and a per-run log file, so a
// scheduler-killed run still leaves a trail on disk.
type RunLogger struct {
	file       *os.File
	logger     *log.Logger
	multiWrite io.Writer
}

// NewRunLogger creates a logger under logs/<job>/ named after the job and
// the run start time.
func NewRunLogger(jobName string) (*RunLogger, error) {
	sanitizedJob := strings.ReplaceAll(strings.ToLower(jobName), " ", "_")

	logsDir := "logs"
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	jobDir := filepath.Join(logsDir, sanitizedJob)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create job directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(jobDir, fmt.Sprintf("%s_%s.log", sanitizedJob, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	multiWrite := io.MultiWriter(os.Stdout, file)
	logger := log.New(multiWrite, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &RunLogger{
		file:       file,
		logger:     logger,
		multiWrite: multiWrite,
	}, nil
}

// NewDiscardLogger returns a logger that drops everything. Used in tests.
func NewDiscardLogger() *RunLogger {
	return NewWriterLogger(io.Discard)
}

// NewWriterLogger returns a logger writing only to w, so tests can observe
// what a run logged.
func NewWriterLogger(w io.Writer) *RunLogger {
	return &RunLogger{logger: log.New(w, "", 0), multiWrite: w}
}

func (rl *RunLogger) LogInfo(format string, v ...interface{}) {
	rl.log("INFO", format, v...)
}

func (rl *RunLogger) LogWarn(format string, v ...interface{}) {
	rl.log("WARN", format, v...)
}

func (rl *RunLogger) LogError(format string, v ...interface{}) {
	rl.log("ERROR", format, v...)
}

func (rl *RunLogger) LogDebug(format string, v ...interface{}) {
	rl.log("DEBUG", format, v...)
}

func (rl *RunLogger) log(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	rl.logger.Printf("[%s] %s", level, message)
}

func (rl *RunLogger) Close() error {
	if rl.file == nil {
		return nil
	}
	return rl.file.Close()
}
