// Package delivery sends outbound texts over the WhatsApp Cloud API, either
// directly or through the asynq-backed queue.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"replify_backend/platform/config"
	"replify_backend/platform/logger"
)

// Client talks to the WhatsApp Cloud API. Credentials are per-business and
// supplied per call, since one deployment serves many businesses.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

type textMessageRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Text             textMessageBody `json:"text"`
}

type textMessageBody struct {
	Body string `json:"body"`
}

type markReadRequest struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// NewClient creates a WhatsApp Cloud API client.
func NewClient(cfg config.ChannelConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.GetChannelAPIURL(), "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// SendText sends one text message to a customer.
func (c *Client) SendText(ctx context.Context, phoneNumberID, accessToken, customerNumber, text string) error {
	payload := textMessageRequest{
		MessagingProduct: "whatsapp",
		To:               customerNumber,
		Type:             "text",
		Text:             textMessageBody{Body: text},
	}

	if err := c.post(ctx, phoneNumberID, accessToken, payload); err != nil {
		return err
	}

	c.log.Info("whatsapp text sent", "to", customerNumber)
	return nil
}

// MarkRead marks an inbound message as read so the customer sees the blue
// ticks. Failures are non-fatal for the caller.
func (c *Client) MarkRead(ctx context.Context, phoneNumberID, accessToken, channelMessageID string) error {
	payload := markReadRequest{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        channelMessageID,
	}
	return c.post(ctx, phoneNumberID, accessToken, payload)
}

func (c *Client) post(ctx context.Context, phoneNumberID, accessToken string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return nil
}
