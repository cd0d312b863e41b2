package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackNotifier sends alerts to a Slack webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	currency   string
	client     *http.Client
}

// NewSlackNotifier creates a Slack webhook notifier. currency labels money
// amounts in the message, e.g. "kr".
func NewSlackNotifier(webhookURL, channel, currency string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		currency:   currency,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, alert Alert) error {
	color := "#36a64f" // green
	switch alert.Level {
	case AlertWarning:
		color = "#ff9900" // orange
	case AlertCritical:
		color = "#ff0000" // red
	case AlertExceeded:
		color = "#cc0000" // dark red
	}

	attachment := slackAttachment{
		Color:  color,
		Text:   alert.Message,
		Footer: "fuellog",
		Ts:     time.Now().Unix(),
	}

	switch {
	case alert.Budget != nil:
		b := alert.Budget
		attachment.Title = fmt.Sprintf("Fuel budget %s", alert.Level)
		attachment.Fields = []slackField{
			{Title: "Budget", Value: b.Name, Short: true},
			{Title: "Period", Value: b.Period, Short: true},
			{Title: "Current Spend", Value: fmt.Sprintf("%.2f %s", b.CurrentSpend, s.currency), Short: true},
			{Title: "Limit", Value: fmt.Sprintf("%.2f %s", b.Limit, s.currency), Short: true},
			{Title: "Threshold", Value: fmt.Sprintf("%.0f%%", b.ThresholdPct), Short: true},
			{Title: "Usage", Value: fmt.Sprintf("%.1f%%", b.UsagePct()), Short: true},
		}
	case alert.Cycle != nil:
		c := alert.Cycle
		attachment.Title = "Odometer went backwards"
		attachment.Fields = []slackField{
			{Title: "From", Value: fmt.Sprintf("%s (%.1f km)", c.StartDate, c.StartOdometerKm), Short: true},
			{Title: "To", Value: fmt.Sprintf("%s (%.1f km)", c.EndDate, c.EndOdometerKm), Short: true},
			{Title: "Distance", Value: fmt.Sprintf("%.1f km", c.DistanceKm), Short: true},
		}
	default:
		attachment.Title = fmt.Sprintf("fuellog %s", alert.Kind)
	}

	payload := slackPayload{
		Channel:     s.channel,
		Attachments: []slackAttachment{attachment},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer"`
	Ts     int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
