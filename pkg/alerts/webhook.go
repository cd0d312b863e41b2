package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier sends alerts to a generic HTTP webhook.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookNotifier creates a generic webhook notifier.
// If secret is non-empty, requests are signed with HMAC-SHA256.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	event := newWebhookEvent(alert, time.Now())
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "fuellog/1.0")
	req.Header.Set("X-Fuellog-Event", event.Event)
	if w.secret != "" {
		req.Header.Set("X-Signature-256", "sha256="+computeHMAC(body, []byte(w.secret)))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s webhook: %w", event.Event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d for %s", resp.StatusCode, event.Event)
	}
	return nil
}

// webhookEvent is the flat JSON body receivers get. Exactly one of Budget
// and Cycle is set, matching Kind.
type webhookEvent struct {
	Event     string        `json:"event"`
	Kind      AlertKind     `json:"kind"`
	Level     AlertLevel    `json:"level"`
	Message   string        `json:"message,omitempty"`
	Timestamp string        `json:"timestamp"`
	Budget    *budgetEvent  `json:"budget,omitempty"`
	Cycle     *CycleDetails `json:"cycle,omitempty"`
}

type budgetEvent struct {
	BudgetDetails
	UsagePct float64 `json:"usage_pct"`
}

func newWebhookEvent(alert Alert, now time.Time) webhookEvent {
	event := webhookEvent{
		Event:     string(alert.Kind) + "_alert",
		Kind:      alert.Kind,
		Level:     alert.Level,
		Message:   alert.Message,
		Timestamp: now.UTC().Format(time.RFC3339),
		Cycle:     alert.Cycle,
	}
	if alert.Budget != nil {
		event.Budget = &budgetEvent{BudgetDetails: *alert.Budget, UsagePct: alert.Budget.UsagePct()}
	}
	return event
}

func computeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
