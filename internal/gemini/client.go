// Package gemini is a minimal client for the Generative Language API's
// generateContent endpoint, covering only what image annotation needs.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/KhanhRomVN/termi-tool/internal/errclass"
)

// DefaultModel is the vision model used for annotation.
const DefaultModel = "gemini-2.0-flash"

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// maxErrorBody caps how much of an error response is carried in errors.
const maxErrorBody = 512

// Client issues generateContent requests. It holds no credentials: the
// API key is supplied per call so the rotation layer can swap accounts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the given model (DefaultModel if empty).
func NewClient(model string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    defaultBaseURL,
		model:      model,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// AnnotateImage sends one image plus the annotation prompt and returns the
// parsed prefix/suffix pairs. Non-2xx responses surface as
// errclass.StatusError so the caller can classify quota failures.
func (c *Client) AnnotateImage(ctx context.Context, apiKey string, image []byte, mimeType, contextDesc string) ([]Annotation, error) {
	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: BuildPrompt(contextDesc)},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		GenerationConfig: &generationConfig{
			Temperature:     0.7,
			TopP:            0.9,
			TopK:            40,
			MaxOutputTokens: 2048,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errclass.StatusError{
			Code: resp.StatusCode,
			Body: truncate(string(body), maxErrorBody),
		}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("response contained no candidates")
	}

	return ParseAnnotations(parsed.Candidates[0].Content.Parts[0].Text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
