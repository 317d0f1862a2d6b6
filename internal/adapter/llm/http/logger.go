package http

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Logger provides structured logging for outbound API calls.
type Logger interface {
	// LogRequest logs an outgoing API request (API key redacted).
	LogRequest(ctx context.Context, req RequestLog)

	// LogResponse logs an API response with timing info.
	LogResponse(ctx context.Context, resp ResponseLog)

	// LogError logs an API error.
	LogError(ctx context.Context, errLog ErrorLog)
}

// RequestLog contains request information for logging.
type RequestLog struct {
	Provider    string
	Model       string
	Timestamp   time.Time
	PromptChars int
	APIKey      string // redacted to last 4 chars before emission
}

// ResponseLog contains response information for logging.
type ResponseLog struct {
	Provider   string
	Model      string
	Timestamp  time.Time
	Duration   time.Duration
	TokensIn   int
	TokensOut  int
	StatusCode int
}

// ErrorLog contains error information for logging.
type ErrorLog struct {
	Provider   string
	Model      string
	Timestamp  time.Time
	Duration   time.Duration
	Error      error
	StatusCode int
	Retryable  bool
}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// DefaultLogger writes structured logs via the standard log package.
type DefaultLogger struct {
	level      LogLevel
	format     LogFormat
	redactKeys bool
}

// NewDefaultLogger creates a logger with the specified config.
func NewDefaultLogger(level LogLevel, format LogFormat, redactKeys bool) *DefaultLogger {
	return &DefaultLogger{level: level, format: format, redactKeys: redactKeys}
}

// LogRequest logs an API request at debug level.
func (l *DefaultLogger) LogRequest(_ context.Context, req RequestLog) {
	if l.level > LogLevelDebug {
		return
	}

	key := l.RedactAPIKey(req.APIKey)
	if l.format == LogFormatJSON {
		l.emitJSON(map[string]any{
			"level": "debug", "type": "request",
			"provider": req.Provider, "model": req.Model,
			"timestamp": req.Timestamp.Format(time.RFC3339),
			"prompt_chars": req.PromptChars, "api_key": key,
		})
		return
	}
	log.Printf("[DEBUG] %s/%s: request sent (prompt=%d chars, key=%s)",
		req.Provider, req.Model, req.PromptChars, key)
}

// LogResponse logs an API response at info level.
func (l *DefaultLogger) LogResponse(_ context.Context, resp ResponseLog) {
	if l.level > LogLevelInfo {
		return
	}

	if l.format == LogFormatJSON {
		l.emitJSON(map[string]any{
			"level": "info", "type": "response",
			"provider": resp.Provider, "model": resp.Model,
			"timestamp":   resp.Timestamp.Format(time.RFC3339),
			"duration_ms": resp.Duration.Milliseconds(),
			"tokens_in":   resp.TokensIn, "tokens_out": resp.TokensOut,
			"status": resp.StatusCode,
		})
		return
	}
	log.Printf("[INFO] %s/%s: response in %s (tokens=%d/%d, status=%d)",
		resp.Provider, resp.Model, resp.Duration.Round(time.Millisecond),
		resp.TokensIn, resp.TokensOut, resp.StatusCode)
}

// LogError logs an API error. Errors are always emitted.
func (l *DefaultLogger) LogError(_ context.Context, errLog ErrorLog) {
	if l.format == LogFormatJSON {
		l.emitJSON(map[string]any{
			"level": "error", "type": "error",
			"provider": errLog.Provider, "model": errLog.Model,
			"timestamp":   errLog.Timestamp.Format(time.RFC3339),
			"duration_ms": errLog.Duration.Milliseconds(),
			"error":       errLog.Error.Error(),
			"status":      errLog.StatusCode, "retryable": errLog.Retryable,
		})
		return
	}
	log.Printf("[ERROR] %s/%s: %v (status=%d, retryable=%v)",
		errLog.Provider, errLog.Model, errLog.Error, errLog.StatusCode, errLog.Retryable)
}

// RedactAPIKey reduces a key to its last 4 characters when redaction is on.
func (l *DefaultLogger) RedactAPIKey(key string) string {
	if !l.redactKeys || key == "" {
		return key
	}
	if len(key) <= 4 {
		return "****"
	}
	return "..." + key[len(key)-4:]
}

func (l *DefaultLogger) emitJSON(fields map[string]any) {
	data, err := json.Marshal(fields)
	if err != nil {
		log.Printf("[ERROR] failed to marshal log entry: %v", err)
		return
	}
	log.Print(string(data))
}

// ParseLogLevel maps config strings to levels; unknown values mean info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LogLevelDebug
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ParseLogFormat maps config strings to formats; unknown values mean human.
func ParseLogFormat(s string) LogFormat {
	if s == "json" {
		return LogFormatJSON
	}
	return LogFormatHuman
}
