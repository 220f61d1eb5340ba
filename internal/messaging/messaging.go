// Package messaging sends operational notifications to Slack and Telegram.
// Delivery is best-effort: failures are logged and never block the pipeline.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"copydesk/internal/core"
	"copydesk/internal/logger"
)

// SlackConfig holds incoming-webhook settings.
type SlackConfig struct {
	WebhookURL string
	Username   string
	IconEmoji  string
}

// TelegramConfig holds bot API settings.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// Notifier fans messages out to every configured channel.
type Notifier struct {
	slack    SlackConfig
	telegram TelegramConfig
	client   *http.Client
	log      *slog.Logger
}

// NewNotifier creates a notifier. Channels with empty credentials are
// silently skipped at send time.
func NewNotifier(slack SlackConfig, telegram TelegramConfig, timeout time.Duration) *Notifier {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		slack:    slack,
		telegram: telegram,
		client:   &http.Client{Timeout: timeout},
		log:      logger.Get(),
	}
}

// Enabled reports whether at least one channel is configured.
func (n *Notifier) Enabled() bool {
	return n.slack.WebhookURL != "" || n.telegram.BotToken != ""
}

// SendAlert delivers a short operational message to all channels.
func (n *Notifier) SendAlert(ctx context.Context, title, body string) {
	text := fmt.Sprintf("*%s*\n%s", title, body)
	n.sendSlack(ctx, text)
	n.sendTelegram(ctx, fmt.Sprintf("%s\n%s", title, body))
}

// SendBatchReport formats a topic batch run for the team channel.
func (n *Notifier) SendBatchReport(ctx context.Context, report core.BatchReport) {
	var b strings.Builder
	fmt.Fprintf(&b, "*토픽 생성 완료: %s*\n", report.Category)
	fmt.Fprintf(&b, "요청 %d건 / 배치 %d회\n", report.Requested, report.Batches)
	fmt.Fprintf(&b, "생성 %d / 유효 %d / 무효 %d / 중복 %d\n",
		report.Generated, report.Valid, report.Invalid, report.Duplicate)
	fmt.Fprintf(&b, "추가 %d건, 현재 재고 %d건", report.Added, report.CurrentStock)
	text := b.String()
	n.sendSlack(ctx, text)
	n.sendTelegram(ctx, strings.ReplaceAll(text, "*", ""))
}

// SendLeadNotification announces a newly captured lead.
func (n *Notifier) SendLeadNotification(ctx context.Context, lead core.Lead) {
	var b strings.Builder
	b.WriteString("*새 문의가 접수되었습니다*\n")
	fmt.Fprintf(&b, "이름: %s\n", lead.Name)
	if lead.Company != "" {
		fmt.Fprintf(&b, "회사: %s\n", lead.Company)
	}
	fmt.Fprintf(&b, "연락처: %s", lead.Phone)
	if lead.Email != "" {
		fmt.Fprintf(&b, " / %s", lead.Email)
	}
	if lead.Message != "" {
		fmt.Fprintf(&b, "\n내용: %s", lead.Message)
	}
	text := b.String()
	n.sendSlack(ctx, text)
	n.sendTelegram(ctx, strings.ReplaceAll(text, "*", ""))
}

type slackPayload struct {
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

func (n *Notifier) sendSlack(ctx context.Context, text string) {
	if n.slack.WebhookURL == "" {
		return
	}

	payload := slackPayload{
		Text:      text,
		Username:  n.slack.Username,
		IconEmoji: n.slack.IconEmoji,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Warn("Failed to marshal Slack payload", "error", err.Error())
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.slack.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.log.Warn("Failed to build Slack request", "error", err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn("Slack delivery failed", "error", err.Error())
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		n.log.Warn("Slack webhook returned non-200", "status", resp.StatusCode)
	}
}

func (n *Notifier) sendTelegram(ctx context.Context, text string) {
	if n.telegram.BotToken == "" || n.telegram.ChatID == "" {
		return
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.telegram.BotToken)
	form := url.Values{
		"chat_id": {n.telegram.ChatID},
		"text":    {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		n.log.Warn("Failed to build Telegram request", "error", err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn("Telegram delivery failed", "error", err.Error())
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		n.log.Warn("Telegram API returned non-200", "status", resp.StatusCode)
	}
}
