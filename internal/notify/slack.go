package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SlackWebhook posts notification text as {"text": ...} to an incoming
// webhook URL. With no URL configured every send is a silent no-op.
type SlackWebhook struct {
	url    string
	client *http.Client
}

func NewSlackWebhook(url string) *SlackWebhook {
	return &SlackWebhook{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackWebhook) Name() string { return "slack" }

// Enabled reports whether a webhook URL is configured.
func (s *SlackWebhook) Enabled() bool { return s.url != "" }

func (s *SlackWebhook) Send(ctx context.Context, n Notification) error {
	if !s.Enabled() || n.Text == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]string{"text": n.Text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
