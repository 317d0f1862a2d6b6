package observability_test

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	llmhttp "github.com/prtriage/prtriage/internal/adapter/llm/http"
	"github.com/prtriage/prtriage/internal/adapter/observability"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	fn()
	return buf.String()
}

func TestEventLogger_Warn(t *testing.T) {
	logger := observability.NewEventLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman)

	output := captureLog(t, func() {
		logger.Warn("automated review failed", map[string]any{
			"pr":    42,
			"error": "no JSON object in model output",
		})
	})

	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "automated review failed")
	assert.Contains(t, output, "error=no JSON object in model output")
	assert.Contains(t, output, "pr=42")
}

func TestEventLogger_InfoSuppressedAtErrorLevel(t *testing.T) {
	logger := observability.NewEventLogger(llmhttp.LogLevelError, llmhttp.LogFormatHuman)

	output := captureLog(t, func() {
		logger.Info("session started", nil)
	})

	assert.Empty(t, output)
}

func TestEventLogger_WarnAlwaysEmitted(t *testing.T) {
	logger := observability.NewEventLogger(llmhttp.LogLevelError, llmhttp.LogFormatHuman)

	output := captureLog(t, func() {
		logger.Warn("could not persist decision", nil)
	})

	assert.Contains(t, output, "could not persist decision")
}

func TestEventLogger_JSONFormat(t *testing.T) {
	logger := observability.NewEventLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatJSON)

	output := captureLog(t, func() {
		logger.Warn("degraded verdict", map[string]any{"action": "comment_only"})
	})

	assert.Contains(t, output, `"level":"warn"`)
	assert.Contains(t, output, `"msg":"degraded verdict"`)
	assert.Contains(t, output, `"action":"comment_only"`)
}
