package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"longcatnode/internal/config"
	"longcatnode/internal/core"
	"longcatnode/internal/util"

	"github.com/go-resty/resty/v2"
)

// Client is the resty-backed upstream transport.
type Client struct {
	http   *resty.Client
	logger core.Logger
}

var _ core.Transport = (*Client)(nil)

// NewHTTPClient builds the pooled HTTP client used for upstream calls.
func NewHTTPClient(settings config.HTTPClientSettings) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          settings.MaxIdleConns,
		MaxIdleConnsPerHost:   settings.MaxIdleConnsPerHost,
		MaxConnsPerHost:       settings.MaxConnsPerHost,
		IdleConnTimeout:       settings.IdleConnTimeout,
		TLSHandshakeTimeout:   settings.TLSHandshakeTimeout,
		ExpectContinueTimeout: core.HTTPExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
		ResponseHeaderTimeout: core.HTTPResponseHeaderTimeout,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   settings.RequestTimeout,
	}
}

// NewClient wraps httpClient in a resty client. A nil httpClient uses the default settings.
func NewClient(httpClient *http.Client, logger core.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(config.DefaultHTTPClientSettings())
	}
	if logger == nil {
		logger = &core.NopLogger{}
	}
	return &Client{
		http:   resty.NewWithClient(httpClient),
		logger: logger,
	}
}

// Do sends one upstream request and returns the raw response body.
// Header names are sent verbatim; PACKAGES_ALLOW_TOOL_USAGE must keep its casing.
func (c *Client) Do(ctx context.Context, req core.UpstreamRequest) ([]byte, error) {
	body, err := util.MarshalJSON(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	request := c.http.R().
		SetContext(ctx).
		SetBody(body)
	for name, value := range req.Headers {
		request.SetHeaderVerbatim(name, value)
	}

	method := req.Method
	if method == "" {
		method = core.HTTPMethodPost
	}

	c.logger.Debug("Upstream %s %s (%d bytes)", method, req.URL, len(body))
	resp, err := request.Execute(method, req.URL)
	if err != nil {
		return nil, &core.TransportError{Err: err}
	}

	if !resp.IsSuccess() {
		message := extractErrorMessage(resp.Body())
		c.logger.Error("LongCat API error: status=%d, body=%s", resp.StatusCode(), message)
		return nil, &core.TransportError{
			StatusCode: resp.StatusCode(),
			Message:    message,
		}
	}

	return resp.Body(), nil
}

// extractErrorMessage prefers the OpenAI-style error.message and falls back to the raw body.
func extractErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := util.UnmarshalJSON(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return truncateMessage(envelope.Error.Message)
		}
		if envelope.Message != "" {
			return truncateMessage(envelope.Message)
		}
	}
	return truncateMessage(strings.TrimSpace(string(body)))
}

func truncateMessage(message string) string {
	if len(message) <= core.MaxErrorMessageSize {
		return message
	}
	return message[:core.MaxErrorMessageSize] + "..."
}
