package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type BrevoConfig struct {
	APIKey      string
	BaseURL     string
	SenderEmail string
	SenderName  string
	Timeout     time.Duration
}

// BrevoClient sends transactional email through the Brevo SMTP API
type BrevoClient struct {
	baseURL    string
	apiKey     string
	sender     Contact
	httpClient *http.Client
}

type Contact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Email struct {
	To          []Contact `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent,omitempty"`
	TextContent string    `json:"textContent,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// Brevo API models based on POST /v3/smtp/email
type sendEmailRequest struct {
	Sender Contact `json:"sender"`
	Email
}

type sendEmailResponse struct {
	MessageID string `json:"messageId"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewBrevoClient(cfg BrevoConfig) *BrevoClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.brevo.com/v3"
	}

	return &BrevoClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		sender:  Contact{Email: cfg.SenderEmail, Name: cfg.SenderName},
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Enabled reports whether an API key is configured.
func (bc *BrevoClient) Enabled() bool {
	return bc.apiKey != ""
}

// SendEmail posts the email and returns the Brevo message id.
// Without an API key the email is logged and dropped.
func (bc *BrevoClient) SendEmail(ctx context.Context, email Email) (string, error) {
	if len(email.To) == 0 {
		return "", fmt.Errorf("email has no recipient")
	}
	if !bc.Enabled() {
		slog.Info("Brevo disabled, email not sent", "to", email.To[0].Email, "subject", email.Subject)
		return "", nil
	}

	jsonBody, err := json.Marshal(sendEmailRequest{Sender: bc.sender, Email: email})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bc.baseURL+"/smtp/email", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("api-key", bc.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := bc.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr brevoError
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("brevo error %d (%s): %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result sendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return result.MessageID, nil
}
