package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ── HTTP Source ─────────────────────────────────────────────
// Fetches items from the inventory API.

type httpSource struct {
	client *http.Client
}

func init() { Register(&httpSource{client: &http.Client{Timeout: 30 * time.Second}}) }

func (s *httpSource) Spec() SourceSpec {
	return SourceSpec{
		Type:  "http",
		Label: "HTTP API",
		ConfigFields: []ConfigField{
			{Key: "url", Label: "URL", Required: true, Help: "Endpoint returning a JSON array of products"},
			{Key: "method", Label: "Method", Options: []string{"GET", "POST"}, Default: "GET"},
			{Key: "headers", Label: "Headers", Help: "JSON object of headers (e.g. {\"Authorization\": \"Bearer xxx\"})"},
			{Key: "body", Label: "Body", Help: "Request body (for POST)"},
			{Key: "dataPath", Label: "Data Path", Help: "Dot-separated path to the item array"},
		},
	}
}

func (s *httpSource) Read(ctx context.Context, cfg Config) (<-chan Record, <-chan error) {
	return emit(ctx, func() ([]Record, error) { return s.fetch(ctx, cfg) })
}

func (s *httpSource) fetch(ctx context.Context, cfg Config) ([]Record, error) {
	url := cfg.String("url")
	if url == "" {
		return nil, errors.New("url is required")
	}
	method := cfg.String("method")
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if b := cfg.String("body"); b != "" {
		body = strings.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if raw := cfg.String("headers"); raw != "" {
		var headers map[string]string
		if err := json.Unmarshal([]byte(raw), &headers); err != nil {
			return nil, fmt.Errorf("parse headers: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return decodeRecords(data, cfg.String("dataPath"))
}
