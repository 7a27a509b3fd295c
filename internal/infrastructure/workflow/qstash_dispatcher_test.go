package workflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
)

func TestQStashDispatcher_PublishesWithDeduplication(t *testing.T) {
	var gotPath string
	headers := http.Header{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		headers = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messageId":"msg_123"}`))
	}))
	defer srv.Close()

	d := NewQStashDispatcher(QStashConfig{
		BaseURL:     srv.URL,
		Token:       "qstash-token",
		TargetURL:   "https://n8n.example.com/webhook/analyze",
		TargetToken: "engine-token",
		Retries:     3,
		Timeout:     time.Second,
	}, logging.NewNop())

	job := testJob()
	receipt, err := d.Dispatch(context.Background(), job)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if receipt.MessageID != "msg_123" || receipt.Mode != workflow.ModeQStash {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if !strings.HasPrefix(gotPath, "/v2/publish/https:/") {
		t.Fatalf("unexpected publish path: %s", gotPath)
	}
	if headers.Get("Upstash-Deduplication-Id") != job.DispatchID {
		t.Fatalf("unexpected deduplication id: %q", headers.Get("Upstash-Deduplication-Id"))
	}
	if headers.Get("Upstash-Retries") != "3" {
		t.Fatalf("unexpected retries header: %q", headers.Get("Upstash-Retries"))
	}
	if headers.Get("Authorization") != "Bearer qstash-token" {
		t.Fatalf("unexpected authorization header")
	}
	if headers.Get("Upstash-Forward-Authorization") != "Bearer engine-token" {
		t.Fatalf("unexpected forwarded authorization header")
	}
}

func TestQStashDispatcher_RetryableStatusIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewQStashDispatcher(QStashConfig{
		BaseURL:   srv.URL,
		Token:     "t",
		TargetURL: "https://n8n.example.com/webhook/analyze",
	}, logging.NewNop())

	_, err := d.Dispatch(context.Background(), testJob())
	if !isTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestNoopDispatcher_Skips(t *testing.T) {
	receipt, err := NewNoopDispatcher(logging.NewNop()).Dispatch(context.Background(), testJob())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !receipt.Skipped || receipt.Mode != workflow.ModeNoop {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
}

func TestCurlPreview_MasksSecretsAndQuotes(t *testing.T) {
	got := curlPreview("https://x/y", []header{
		{name: "Authorization", value: "Bearer qstash-token", secret: true},
		{name: "X-Api-Key", value: "raw-key", secret: true},
		{name: "Upstash-Retries", value: "3"},
	}, []byte(`{"a":"it's"}`))
	want := `curl -X POST 'https://x/y' -H 'Authorization: Bearer ***' -H 'X-Api-Key: ***' -H 'Upstash-Retries: 3' -d '{"a":"it'"'"'s"}'`
	if got != want {
		t.Fatalf("unexpected preview:\n got=%s\nwant=%s", got, want)
	}
}
