package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"copydesk/internal/core"
)

func TestSendAlertPostsSlackPayload(t *testing.T) {
	var payload slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("Failed to decode Slack payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(SlackConfig{WebhookURL: srv.URL, Username: "copydesk"}, TelegramConfig{}, 5*time.Second)
	n.SendAlert(context.Background(), "배치 실패", "record store unavailable")

	if !strings.Contains(payload.Text, "배치 실패") {
		t.Errorf("Expected alert title in payload, got %q", payload.Text)
	}
	if payload.Username != "copydesk" {
		t.Errorf("Expected username, got %q", payload.Username)
	}
}

func TestSendBatchReportFormatsCounts(t *testing.T) {
	var payload slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}))
	defer srv.Close()

	n := NewNotifier(SlackConfig{WebhookURL: srv.URL}, TelegramConfig{}, 5*time.Second)
	n.SendBatchReport(context.Background(), core.BatchReport{
		Category:     "meta-ads",
		Requested:    30,
		Batches:      2,
		Generated:    50,
		Valid:        40,
		Invalid:      10,
		Duplicate:    10,
		Added:        30,
		CurrentStock: 45,
	})

	for _, want := range []string{"meta-ads", "30", "45"} {
		if !strings.Contains(payload.Text, want) {
			t.Errorf("Expected %q in report, got %q", want, payload.Text)
		}
	}
}

func TestNotifierSkipsUnconfiguredChannels(t *testing.T) {
	n := NewNotifier(SlackConfig{}, TelegramConfig{}, time.Second)
	if n.Enabled() {
		t.Error("Expected notifier without channels to be disabled")
	}
	// Must not panic or make requests.
	n.SendAlert(context.Background(), "제목", "본문")
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer srv.Close()

	n := NewNotifier(SlackConfig{WebhookURL: srv.URL}, TelegramConfig{}, time.Second)
	// Failure is logged only; the call must return normally.
	n.SendAlert(context.Background(), "제목", "본문")
}
