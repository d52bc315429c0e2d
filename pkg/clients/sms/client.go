package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/bogarovo/internal/config"
)

// APIClient sends text messages through an HTTP SMS provider.
type APIClient struct {
	httpClient *resty.Client
	sender     string
}

// NewClient builds an SMS client using the provided configuration values.
func NewClient(cfg config.SMSConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{httpClient: restyClient, sender: cfg.Sender}
}

type sendRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Body string `json:"body"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SendText delivers body to one phone number. Delivery receipts are not tracked.
func (c *APIClient) SendText(ctx context.Context, to, body string) error {
	if to == "" {
		return errors.New("send sms: empty destination")
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(sendRequest{From: c.sender, To: to, Body: body}).
		SetError(apiErr).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("sms api error: status=%d, code=%s, message=%s", resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Message)
	}
	return nil
}
