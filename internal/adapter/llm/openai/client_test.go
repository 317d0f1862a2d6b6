package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	llmhttp "github.com/prtriage/prtriage/internal/adapter/llm/http"
	"github.com/prtriage/prtriage/internal/adapter/llm/openai"
)

func fastClient(t *testing.T, serverURL, model string) *openai.HTTPClient {
	t.Helper()
	c := openai.NewHTTPClient("sk-test", model)
	c.SetBaseURL(serverURL)
	c.SetRetryConfig(llmhttp.RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	})
	return c
}

func TestCall_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.MaxTokens != 512 {
			t.Errorf("max_tokens = %d, want 512", req.MaxTokens)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: "gpt-test",
			Choices: []openai.Choice{{
				Message:      openai.Message{Role: "assistant", Content: `{"action":"approve"}`},
				FinishReason: "stop",
			}},
			Usage: openai.Usage{PromptTokens: 50, CompletionTokens: 10},
		})
	}))
	defer server.Close()

	c := fastClient(t, server.URL, "gpt-test")
	resp, err := c.Call(context.Background(), "review this", 512)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if resp.Text != `{"action":"approve"}` {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestCall_ReasoningModelUsesCompletionTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.MaxTokens != 0 {
			t.Errorf("max_tokens should be omitted for reasoning models, got %d", req.MaxTokens)
		}
		if req.MaxCompletionTokens != 512 {
			t.Errorf("max_completion_tokens = %d, want 512", req.MaxCompletionTokens)
		}

		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model:   "o3-mini",
			Choices: []openai.Choice{{Message: openai.Message{Content: "ok"}}},
		})
	}))
	defer server.Close()

	c := fastClient(t, server.URL, "o3-mini")
	if _, err := c.Call(context.Background(), "p", 512); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
}

func TestCall_RateLimitRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(openai.ErrorResponse{
				Error: openai.ErrorDetail{Message: "rate limit", Type: "rate_limit_error"},
			})
			return
		}
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model:   "gpt-test",
			Choices: []openai.Choice{{Message: openai.Message{Content: "ok"}}},
		})
	}))
	defer server.Close()

	c := fastClient(t, server.URL, "gpt-test")
	resp, err := c.Call(context.Background(), "p", 128)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text = %q", resp.Text)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestCall_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{Model: "gpt-test"})
	}))
	defer server.Close()

	c := fastClient(t, server.URL, "gpt-test")
	if _, err := c.Call(context.Background(), "p", 128); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestCall_InvalidRequestNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(openai.ErrorResponse{
			Error: openai.ErrorDetail{Message: "bad model", Type: "invalid_request_error"},
		})
	}))
	defer server.Close()

	c := fastClient(t, server.URL, "gpt-test")
	_, err := c.Call(context.Background(), "p", 128)

	var httpErr *llmhttp.Error
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *llmhttp.Error, got %v", err)
	}
	if httpErr.Type != llmhttp.ErrTypeInvalidRequest {
		t.Errorf("error type = %v", httpErr.Type)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
