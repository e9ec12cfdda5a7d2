package external

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxFormSize = 4 << 20

type JotFormConfig struct {
	FormID  string
	BaseURL string
	Timeout time.Duration
	TTL     time.Duration
}

// JotFormClient downloads the public HTML of a JotForm form
type JotFormClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewJotFormClient(cfg JotFormConfig) *JotFormClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://form.jotform.com"
	}

	return &JotFormClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (jc *JotFormClient) FetchForm(ctx context.Context, formID string) ([]byte, error) {
	if formID == "" {
		return nil, fmt.Errorf("jotform form id is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jc.baseURL+"/"+url.PathEscape(formID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := jc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFormSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read form: %w", err)
	}
	return body, nil
}
