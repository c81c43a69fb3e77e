// Package whatsapp sends notifications through a self-hosted WhatsApp HTTP
// gateway (go-whatsapp-web-multidevice style API with basic auth).
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/ports"
)

var _ ports.Dispatcher = (*Client)(nil)

// Client posts text messages to one business recipient.
type Client struct {
	baseURL    string
	path       string
	username   string
	password   string
	recipient  string
	httpClient *http.Client
}

type sendMessageRequest struct {
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	IsForwarded bool   `json:"is_forwarded"`
}

type sendMessageResponse struct {
	Code    string `json:"code"`
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message"`
}

// Config locates the gateway and the business recipient.
type Config struct {
	BaseURL   string
	Path      string
	Username  string
	Password  string
	Recipient string
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("whatsapp gateway base URL is required")
	}
	if strings.TrimSpace(cfg.Recipient) == "" {
		return nil, errors.New("whatsapp recipient is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:    baseURL,
		path:       strings.Trim(cfg.Path, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		recipient:  cfg.Recipient,
		httpClient: httpClient,
	}, nil
}

// Dispatch sends the notification text to the configured recipient.
func (c *Client) Dispatch(ctx context.Context, notification domain.Notification) error {
	if notification.Text == "" {
		return errors.New("whatsapp: empty notification")
	}
	body, err := json.Marshal(sendMessageRequest{Phone: jid(c.recipient), Message: notification.Text})
	if err != nil {
		return fmt.Errorf("whatsapp: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var parsed sendMessageResponse
	_ = json.Unmarshal(raw, &parsed)
	if resp.StatusCode >= http.StatusMultipleChoices || (parsed.Success != nil && !*parsed.Success) {
		msg := strings.TrimSpace(parsed.Message)
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("whatsapp: gateway rejected message: %s", msg)
	}
	return nil
}

func (c *Client) sendURL() string {
	if c.path == "" {
		return c.baseURL + "/send/message"
	}
	return c.baseURL + "/" + c.path + "/send/message"
}

// jid turns a bare number into a WhatsApp user id.
func jid(phone string) string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if strings.Contains(phone, "@") {
		return phone
	}
	return phone + "@s.whatsapp.net"
}
