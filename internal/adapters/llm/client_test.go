package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"retroscope/internal/platform/cache"
	perr "retroscope/internal/platform/errors"
)

func newTestLLM(t *testing.T, srvURL string, cc *cache.Cache) (*Client, *[]time.Duration) {
	t.Helper()
	c, err := New(Options{
		APIKey:     "test-key",
		BaseURL:    srvURL,
		Model:      "test-model",
		MaxRetries: 3,
		RetryBase:  time.Millisecond,
	}, cc)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	slept := &[]time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return c, slept
}

func completionBody(content string) string {
	payload := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
	blob, _ := json.Marshal(payload)
	return string(blob)
}

func errorBody(msg, typ string) string {
	blob, _ := json.Marshal(map[string]any{"error": map[string]any{"message": msg, "type": typ}})
	return string(blob)
}

func TestCompleteSendsPromptAndReturnsContent(t *testing.T) {
	var gotBody atomic.Pointer[[]byte]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody.Store(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("all good")))
	}))
	defer srv.Close()

	c, _ := newTestLLM(t, srv.URL, nil)
	msgs := []Message{
		{Role: RoleSystem, Content: "you review code"},
		{Role: RoleUser, Content: "score these commits"},
	}
	content, err := c.Complete(context.Background(), msgs, DefaultTemperature)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != "all good" {
		t.Fatalf("Complete = %q, want %q", content, "all good")
	}

	var req struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(*gotBody.Load(), &req); err != nil {
		t.Fatalf("request body did not decode: %v", err)
	}
	if req.Model != "test-model" {
		t.Fatalf("request model = %q, want test-model", req.Model)
	}
	if req.Temperature != DefaultTemperature {
		t.Fatalf("request temperature = %v, want %v", req.Temperature, DefaultTemperature)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Fatalf("request messages = %+v, want system then user", req.Messages)
	}
}

func TestCompleteRetriesTransient(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(errorBody("boom", "server_error")))
			return
		}
		_, _ = w.Write([]byte(completionBody("second try")))
	}))
	defer srv.Close()

	c, slept := newTestLLM(t, srv.URL, nil)
	content, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0.3)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != "second try" {
		t.Fatalf("Complete = %q, want second try", content)
	}
	if hits.Load() != 2 {
		t.Fatalf("server hits = %d, want 2", hits.Load())
	}
	if len(*slept) != 1 || (*slept)[0] != time.Millisecond {
		t.Fatalf("sleeps = %v, want [1ms]", *slept)
	}
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(errorBody("slow down", "rate_limit_error")))
			return
		}
		_, _ = w.Write([]byte(completionBody("ok")))
	}))
	defer srv.Close()

	c, slept := newTestLLM(t, srv.URL, nil)
	content, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0.3)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != "ok" {
		t.Fatalf("Complete = %q, want ok", content)
	}
	if hits.Load() != 3 {
		t.Fatalf("server hits = %d, want exactly 3 attempts", hits.Load())
	}
	if len(*slept) != 2 {
		t.Fatalf("sleeps = %v, want 2 backoffs", *slept)
	}
	if (*slept)[1] < (*slept)[0] {
		t.Fatalf("backoffs decreased: %v", *slept)
	}
}

func TestCompleteCancelInterruptsBackoff(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(errorBody("slow down", "rate_limit_error")))
	}))
	defer srv.Close()

	c, err := New(Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "test-model",
		MaxRetries: 3,
		RetryBase:  2 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err = c.Complete(ctx, []Message{{Role: RoleUser, Content: "hi"}}, 0.3)
	elapsed := time.Since(start)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Complete returned %v, want context.Canceled", err)
	}
	if elapsed >= time.Second {
		t.Fatalf("Complete held for %v, cancellation should interrupt the backoff", elapsed)
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1 (no retry after cancel)", hits.Load())
	}
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(errorBody("down", "server_error")))
	}))
	defer srv.Close()

	c, slept := newTestLLM(t, srv.URL, nil)
	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0.3)
	if !perr.IsCode(err, perr.ErrorCodeTransientUpstream) {
		t.Fatalf("error code = %v, want transient upstream", perr.CodeOf(err))
	}
	if hits.Load() != 4 {
		t.Fatalf("server hits = %d, want 4 (initial try plus 3 retries)", hits.Load())
	}
	if len(*slept) != 3 {
		t.Fatalf("sleeps = %v, want 3 backoffs", *slept)
	}
}

func TestCompleteFailsFastOnUnauthorized(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(errorBody("bad key", "invalid_request_error")))
	}))
	defer srv.Close()

	c, slept := newTestLLM(t, srv.URL, nil)
	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0.3)
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("error code = %v, want unauthorized", perr.CodeOf(err))
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1", hits.Load())
	}
	if len(*slept) != 0 {
		t.Fatalf("sleeps = %v, want none", *slept)
	}
}

func TestCompleteValidationFailureDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("   ")))
	}))
	defer srv.Close()

	c, slept := newTestLLM(t, srv.URL, nil)
	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0.3)
	if !perr.IsCode(err, perr.ErrorCodeResponseValidation) {
		t.Fatalf("error code = %v, want response validation", perr.CodeOf(err))
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1", hits.Load())
	}
	if len(*slept) != 0 {
		t.Fatalf("sleeps = %v, want none", *slept)
	}
}

func TestCompleteServesFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("cached result")))
	}))
	defer srv.Close()

	cc, err := cache.New(t.TempDir(), time.Hour, true)
	if err != nil {
		t.Fatalf("cache.New returned error: %v", err)
	}
	c, _ := newTestLLM(t, srv.URL, cc)

	msgs := []Message{{Role: RoleUser, Content: "same prompt"}}
	first, err := c.Complete(context.Background(), msgs, 0.3)
	if err != nil {
		t.Fatalf("first Complete returned error: %v", err)
	}
	second, err := c.Complete(context.Background(), msgs, 0.3)
	if err != nil {
		t.Fatalf("second Complete returned error: %v", err)
	}
	if first != second || first != "cached result" {
		t.Fatalf("cached content = %q / %q, want matching cached result", first, second)
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1", hits.Load())
	}
}

func TestPromptKey(t *testing.T) {
	msgs := []Message{{Role: RoleUser, Content: "analyze"}}
	base := promptKey("m", 0.3, msgs)
	if base != promptKey("m", 0.3, []Message{{Role: RoleUser, Content: "analyze"}}) {
		t.Fatal("identical prompts should share a key")
	}
	if base == promptKey("m", 0.7, msgs) {
		t.Fatal("temperature should change the key")
	}
	if base == promptKey("other", 0.3, msgs) {
		t.Fatal("model should change the key")
	}
	if base == promptKey("m", 0.3, []Message{{Role: RoleUser, Content: "different"}}) {
		t.Fatal("message content should change the key")
	}
}
