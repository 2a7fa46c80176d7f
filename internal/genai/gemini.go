// Package genai adapts the Gemini API client to the Generator interface used
// by the assist service.
package genai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"
	gemini "google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash-latest"

var ErrNotConfigured = errors.New("genai: missing API key")

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini endpoint, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	Model  string
	models *gemini.Models
}

// NewClient builds a Gemini client. Without an API key the client is still
// returned and every Generate call fails with ErrNotConfigured.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	c := &Client{Model: cfg.Model}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if cfg.APIKey == "" {
		return c, nil
	}
	sdk, err := gemini.NewClient(ctx, &gemini.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     gemini.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: gemini.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "gemini client")
	}
	c.models = sdk.Models
	return c, nil
}

// Generate returns the text of the first candidate. An empty string with a
// nil error means the model answered with no text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.models == nil {
		return "", ErrNotConfigured
	}
	contents := []*gemini.Content{{Role: "user", Parts: []*gemini.Part{{Text: prompt}}}}
	resp, err := c.models.GenerateContent(ctx, c.Model, contents, nil)
	if err != nil {
		return "", pkgerrors.Wrap(err, "gemini generate")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}
