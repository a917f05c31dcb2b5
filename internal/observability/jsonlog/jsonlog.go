// Package jsonlog emits one structured log line per event.
package jsonlog

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	Prefix string
}

type Logger struct {
	base *log.Logger
}

func New(w io.Writer, opts Options) *Logger {
	level, err := log.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = log.InfoLevel
	}
	formatter := log.JSONFormatter
	if strings.EqualFold(opts.Format, "text") {
		formatter = log.TextFormatter
	}
	return &Logger{base: log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Prefix:          opts.Prefix,
	})}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return New(io.Discard, Options{Level: "error"})
}

func (l *Logger) Debug(msg string, fields map[string]any) {
	l.emit(log.DebugLevel, msg, fields)
}

func (l *Logger) Info(msg string, fields map[string]any) {
	l.emit(log.InfoLevel, msg, fields)
}

func (l *Logger) Warn(msg string, fields map[string]any) {
	l.emit(log.WarnLevel, msg, fields)
}

func (l *Logger) Error(msg string, fields map[string]any) {
	l.emit(log.ErrorLevel, msg, fields)
}

func (l *Logger) emit(level log.Level, msg string, fields map[string]any) {
	if l == nil || l.base == nil {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		kv = append(kv, k, v)
	}
	l.base.Log(level, msg, kv...)
}
