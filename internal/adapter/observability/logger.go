// Package observability bridges the HTTP clients' structured logging
// configuration to the event logging the use cases expect.
package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	llmhttp "github.com/prtriage/prtriage/internal/adapter/llm/http"
)

// EventLogger emits leveled session events with structured fields. It
// honors the same level/format settings as the LLM HTTP client logger so
// a single logging config drives both.
type EventLogger struct {
	level  llmhttp.LogLevel
	format llmhttp.LogFormat
}

// NewEventLogger creates an event logger with the specified config.
func NewEventLogger(level llmhttp.LogLevel, format llmhttp.LogFormat) *EventLogger {
	return &EventLogger{level: level, format: format}
}

// Info logs an informational event.
func (l *EventLogger) Info(msg string, fields map[string]any) {
	if l.level > llmhttp.LogLevelInfo {
		return
	}
	l.emit("info", msg, fields)
}

// Warn logs a warning. Warnings are always emitted.
func (l *EventLogger) Warn(msg string, fields map[string]any) {
	l.emit("warn", msg, fields)
}

func (l *EventLogger) emit(level, msg string, fields map[string]any) {
	if l.format == llmhttp.LogFormatJSON {
		entry := map[string]any{"level": level, "msg": msg}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf("[ERROR] failed to marshal log entry: %v", err)
			return
		}
		log.Print(string(data))
		return
	}

	log.Printf("[%s] %s%s", strings.ToUpper(level), msg, formatFields(fields))
}

// formatFields renders fields as " (k=v, ...)" with keys sorted for stable
// output.
func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
