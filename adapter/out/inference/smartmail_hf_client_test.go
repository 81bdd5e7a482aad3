package inference

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"smartmail_server/core/domain"
	"smartmail_server/core/port/out"
)

// newTestClient points both endpoint URLs at srv and disables real sleeps.
func newTestClient(srv *httptest.Server, maxRetries int) *HFClient {
	c := NewHFClient(HFConfig{
		APIKey:       "test-key",
		SummaryURL:   srv.URL + "/summary",
		SentimentURL: srv.URL + "/sentiment",
		Timeout:      2 * time.Second,
		MaxRetries:   maxRetries,
		RetryDelay:   time.Millisecond,
		WaitCap:      10 * time.Second,
	})
	c.http = srv.Client()
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestHFClientAuthMissingShortCircuit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(srv, 2)
	c.config.APIKey = ""

	_, err := c.Summarize(context.Background(), "some text", out.SummaryParams{})
	if domain.FailureReasonOf(err) != domain.FailureAuthMissing {
		t.Errorf("reason = %s, want auth_missing", domain.FailureReasonOf(err))
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times without credential, want 0", hits.Load())
	}
}

func TestHFClientSummarizeHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`[{"summary_text":"the short version"}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv, 0)
	got, err := c.Summarize(context.Background(), "long text here", out.SummaryParams{MaxLength: 60})
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "the short version" {
		t.Errorf("Summarize = %q", got)
	}
}

func TestHFClientSentimentHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"label":"LABEL_0","score":0.91},{"label":"LABEL_2","score":0.04}]]`))
	}))
	defer srv.Close()

	c := newTestClient(srv, 0)
	scores, err := c.Sentiment(context.Background(), "this is terrible")
	if err != nil {
		t.Fatalf("Sentiment error: %v", err)
	}
	if len(scores) != 2 || scores[0].Label != "LABEL_0" || scores[0].Score != 0.91 {
		t.Errorf("Sentiment = %+v", scores)
	}
}

func TestHFClientMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"empty array", `[]`},
		{"wrong shape", `{"summary_text":"flat object"}`},
		{"empty summary", `[{"summary_text":""}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(srv, 0)
			_, err := c.Summarize(context.Background(), "text", out.SummaryParams{})
			if domain.FailureReasonOf(err) != domain.FailureMalformed {
				t.Errorf("reason = %s, want malformed_response", domain.FailureReasonOf(err))
			}
		})
	}
}

func TestHFClientModelLoadingRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Model is loading","estimated_time":3.5}`))
			return
		}
		w.Write([]byte(`[{"summary_text":"ready now"}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv, 2)
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	got, err := c.Summarize(context.Background(), "text", out.SummaryParams{})
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "ready now" {
		t.Errorf("Summarize = %q", got)
	}
	if len(slept) != 1 || slept[0] != 3500*time.Millisecond {
		t.Errorf("slept %v, want one 3.5s wait from estimated_time", slept)
	}
}

func TestHFClientLoadingWaitCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is loading","estimated_time":120}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, 1)
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	_, err := c.Summarize(context.Background(), "text", out.SummaryParams{})
	if domain.FailureReasonOf(err) != domain.FailureServiceUnavailable {
		t.Errorf("reason = %s, want service_unavailable after retries", domain.FailureReasonOf(err))
	}
	for _, d := range slept {
		if d > 10*time.Second {
			t.Errorf("wait %v exceeds cap", d)
		}
	}
}

func TestHFClientRetryExhaustion(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is loading","estimated_time":1}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, 2)
	_, err := c.Summarize(context.Background(), "text", out.SummaryParams{})
	if domain.FailureReasonOf(err) != domain.FailureServiceUnavailable {
		t.Errorf("reason = %s, want service_unavailable", domain.FailureReasonOf(err))
	}
	if hits.Load() != 3 {
		t.Errorf("server hit %d times, want 3 (initial + 2 retries)", hits.Load())
	}
}

func TestHFClientRateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv, 2)
	_, err := c.Sentiment(context.Background(), "text")

	var mce *domain.ModelCallError
	if !errors.As(err, &mce) || mce.Reason != domain.FailureRateLimited {
		t.Fatalf("reason = %s, want rate_limited", domain.FailureReasonOf(err))
	}
	if mce.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s from header", mce.RetryAfter)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want no retries on rate limit", hits.Load())
	}
}

func TestHFClientTimeoutRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 1 {
			time.Sleep(200 * time.Millisecond)
		}
		w.Write([]byte(`[{"summary_text":"after retry"}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv, 2)
	c.config.Timeout = 50 * time.Millisecond

	got, err := c.Summarize(context.Background(), "text", out.SummaryParams{})
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "after retry" {
		t.Errorf("Summarize = %q", got)
	}
}
