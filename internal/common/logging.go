// Package common provides the logger shared by every vox-portal component.
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

const (
	timeFormat      = "2006-01-02T15:04:05Z07:00"
	defaultLogFile  = "logs/vox-portal.log"
	defaultMaxBytes = 500 << 10
	defaultBackups  = 10
)

// LoggingConfig selects writers and level for NewLoggerFromConfig.
type LoggingConfig struct {
	Level      string
	Outputs    []string // "console", "file"
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
}

// Logger is the arbor logger with the fluent Info()/Warn()/Error() API.
type Logger struct {
	arbor.ILogger
}

// NewLogger creates a console logger at the given level.
func NewLogger(level string) *Logger {
	return NewLoggerFromConfig(LoggingConfig{Level: level})
}

// NewLoggerFromConfig attaches a writer per configured output. Console goes
// to stderr so stdout stays free for CLI results. A memory writer is always
// attached so recent events can be queried.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	l := arbor.NewLogger()
	for _, out := range outputsOrDefault(cfg.Outputs) {
		switch strings.TrimSpace(out) {
		case "console":
			l = l.WithConsoleWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				Writer:     os.Stderr,
				TimeFormat: timeFormat,
			})
		case "file":
			l = l.WithFileWriter(fileWriterConfig(cfg))
		}
	}
	l = l.WithMemoryWriter(models.WriterConfiguration{Type: models.LogWriterTypeMemory})
	return &Logger{ILogger: l.WithLevelFromString(levelOrDefault(cfg.Level))}
}

func outputsOrDefault(outputs []string) []string {
	if len(outputs) == 0 {
		return []string{"console"}
	}
	return outputs
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func fileWriterConfig(cfg LoggingConfig) models.WriterConfiguration {
	wc := models.WriterConfiguration{
		Type:       models.LogWriterTypeFile,
		FileName:   cfg.FilePath,
		MaxSize:    int64(cfg.MaxSizeMB) << 20,
		MaxBackups: cfg.MaxBackups,
		TimeFormat: timeFormat,
	}
	if wc.FileName == "" {
		wc.FileName = defaultLogFile
	}
	if wc.MaxSize <= 0 {
		wc.MaxSize = defaultMaxBytes
	}
	if wc.MaxBackups <= 0 {
		wc.MaxBackups = defaultBackups
	}
	return wc
}

// NewLoggerWithOutput creates a logger writing one plain text line per
// event to w. The vox-voice CLI uses it for --verbose output.
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	arbor.RegisterWriter(arbor.WRITER_CONSOLE, &lineWriter{out: w, level: log.TraceLevel})
	l := arbor.NewLogger().
		WithMemoryWriter(models.WriterConfiguration{Type: models.LogWriterTypeMemory}).
		WithLevelFromString(level)
	return &Logger{ILogger: l}
}

// NewSilentLogger discards everything. It installs its own writer so
// events are not dispatched to globally registered ones.
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewLogger().WithWriters([]writers.IWriter{discard{}})}
}

// WithCorrelationId returns a Logger that tags events with id.
func (l *Logger) WithCorrelationId(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}

type discard struct{}

func (discard) Write(p []byte) (int, error)           { return len(p), nil }
func (d discard) WithLevel(log.Level) writers.IWriter { return d }
func (discard) GetFilePath() string                   { return "" }
func (discard) Close() error                          { return nil }

// lineWriter renders arbor's JSON events as "message k=v ..." lines.
type lineWriter struct {
	out   io.Writer
	level log.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	var evt models.LogEvent
	if err := json.Unmarshal(p, &evt); err != nil {
		return w.out.Write(p)
	}
	if evt.Level < w.level {
		return len(p), nil
	}
	if _, err := io.WriteString(w.out, formatEvent(evt)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// formatEvent sorts fields so CLI transcripts are stable.
func formatEvent(evt models.LogEvent) string {
	keys := make([]string, 0, len(evt.Fields))
	for k := range evt.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(evt.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, evt.Fields[k])
	}
	if evt.Error != "" {
		fmt.Fprintf(&b, " error=%s", evt.Error)
	}
	b.WriteByte('\n')
	return b.String()
}

func (w *lineWriter) WithLevel(level log.Level) writers.IWriter {
	w.level = level
	return w
}

func (w *lineWriter) GetFilePath() string { return "" }
func (w *lineWriter) Close() error        { return nil }
