// Package genai calls the Gemini generateContent API and caches its replies.
package genai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrNotConfigured indicates that no API key is set.
	ErrNotConfigured = errors.New("generative API key not configured")
	// ErrUpstream indicates a transport failure or non-2xx reply.
	ErrUpstream = errors.New("generative API request failed")
	// ErrEmptyResponse indicates a reply without any text.
	ErrEmptyResponse = errors.New("no text found in generative API response")
)

const apiKeyHeader = "x-goog-api-key"

// Request is a single-turn generation request.
type Request struct {
	Kind   string
	System string
	Prompt string
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is a Gemini REST client.
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// NewClient creates a Client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

// Generate sends the prompt with its system instruction and returns the
// first candidate's first text part.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
	}
	if req.System != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}

	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(apiKeyHeader, c.apiKey).
		SetPathParam("model", c.model).
		SetBody(body).
		SetResult(&out).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, withoutURL(err))
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// withoutURL drops the request URL from transport errors so the endpoint
// never reaches the logs.
func withoutURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
