package opik

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/supportflow-ai/supportflow/agent/contract"
)

type Config struct {
	URL         string        `split_words:"true"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true"`
	ProjectName string        `split_words:"true" default:"supportflow"`
	Timeout     time.Duration `split_words:"true" default:"10s"`
}

// Enabled reports whether a trace endpoint was configured at all.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// Client ships capability trace events to an Opik-compatible endpoint.
// Delivery is best effort; the orchestration loop never blocks on it.
type Client struct {
	baseURL     string
	apiKey      string
	projectName string
	httpClient  *http.Client
}

var _ contractx.TraceSink = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("opik url is required")
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		projectName: strings.TrimSpace(cfg.ProjectName),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	return client, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type tracePayload struct {
	ProjectName string `json:"project_name,omitempty"`
	ThreadID    string `json:"thread_id"`
	Name        string `json:"name"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	DurationMS  int64  `json:"duration_ms"`
}

func (c *Client) Record(ctx context.Context, event contractx.TraceEvent) error {
	payload := tracePayload{
		ProjectName: c.projectName,
		ThreadID:    event.ThreadID,
		Name:        string(event.Capability),
		Input:       event.Input,
		Output:      event.Output,
		DurationMS:  event.DurationMS,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("opik: marshal trace: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/private/traces", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("opik: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("opik: send trace: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("opik: unexpected status %d", resp.StatusCode)
	}
	return nil
}
