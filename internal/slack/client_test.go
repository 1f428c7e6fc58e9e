package slack

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestClient wires a client against a test server with sleeping stubbed
// out, recording every backoff duration.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var sleeps []time.Duration
	c := NewClient("xoxp-test", testLogger(),
		WithBaseURL(srv.URL),
		withSleep(func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		}))
	return c, &sleeps
}

func TestClient_Success(t *testing.T) {
	var gotToken string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("token")
		w.Write([]byte(`{"ok": true, "messages": [], "has_more": false}`))
	})

	body, err := c.Get(context.Background(), "conversations.history", url.Values{}, HistorySchema, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("expected response body")
	}
	if gotToken != "xoxp-test" {
		t.Fatalf("token not attached, got %q", gotToken)
	}
}

func TestClient_RateLimitedThenSuccess(t *testing.T) {
	requests := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok": true, "messages": [], "has_more": false}`))
	})

	wait := 7 * time.Second
	if _, err := c.Get(context.Background(), "conversations.history", url.Values{}, HistorySchema, wait); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 2 {
		t.Fatalf("expected 2 requests, got %d", requests)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != wait {
		t.Fatalf("expected one sleep of %v, got %v", wait, *sleeps)
	}
}

func TestClient_FatalNeverSleeps(t *testing.T) {
	requests := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Get(context.Background(), "users.list", url.Values{}, nil, time.Second)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if requests != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, requests)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("fatal outcomes must not sleep, got %v", *sleeps)
	}
}

func TestClient_RetryBound(t *testing.T) {
	requests := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Get(context.Background(), "users.list", url.Values{}, nil, time.Second)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if requests != maxAttempts {
		t.Fatalf("expected exactly %d attempts, got %d", maxAttempts, requests)
	}
	// No sleep after the final attempt.
	if len(*sleeps) != maxAttempts-1 {
		t.Fatalf("expected %d sleeps, got %d", maxAttempts-1, len(*sleeps))
	}
}

func TestClient_EmptyBodyIsFatal(t *testing.T) {
	requests := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	if _, err := c.Get(context.Background(), "users.list", url.Values{}, nil, time.Second); err == nil {
		t.Fatal("expected error for empty body")
	}
	if requests != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, requests)
	}
}

func TestClient_SchemaViolationRetriesThenFails(t *testing.T) {
	requests := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"ok": true}`))
	})

	_, err := c.Get(context.Background(), "conversations.history", url.Values{}, HistorySchema, time.Second)
	if err == nil {
		t.Fatal("expected schema error")
	}
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError in chain, got %v", err)
	}
	if requests != maxAttempts {
		t.Fatalf("schema violations share the retry bound, got %d attempts", requests)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("schema violations must not sleep, got %v", *sleeps)
	}
}

func TestClient_SoftFailureStillReturned(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error": "ratelimited_but_fine", "messages": [], "has_more": false}`))
	})

	body, err := c.Get(context.Background(), "conversations.history", url.Values{}, HistorySchema, time.Second)
	if err != nil {
		t.Fatalf("ok=false must not fail the call: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("expected envelope to be returned for the caller to decide")
	}
}
