// Package ai bridges prompts to a Gemini-style generative API for news text
// and image generation.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyPrompt is returned before any network call when the prompt is
	// blank.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrNoCandidates means the provider response contained no candidates.
	ErrNoCandidates = errors.New("no candidates in AI response")
	// ErrNoContentParts means the first candidate had no content parts.
	ErrNoContentParts = errors.New("no content parts in AI response")
	// ErrNoImageData means no part carried inline image data.
	ErrNoImageData = errors.New("no image data found in AI response")
)

// Client calls a generateContent-style REST endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	textModel  string
	imageModel string
	httpClient *http.Client
}

// Options configures the Client.
type Options struct {
	BaseURL    string
	APIKey     string
	TextModel  string
	ImageModel string
}

// New creates a new generative-AI client.
func New(opts Options) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		textModel:  opts.TextModel,
		imageModel: opts.ImageModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Request/response shapes for the generateContent endpoint. Only the fields
// this bridge reads are declared; everything else in the provider payload is
// ignored.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText forwards a prompt to the text model and returns the raw text
// of the response.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := c.generateContent(ctx, c.textModel, prompt)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", ErrNoContentParts
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// GenerateImage forwards a prompt to the image model and returns the decoded
// image bytes. The provider response shape is validated layer by layer so
// each missing piece fails with its own error.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	resp, err := c.generateContent(ctx, c.imageModel, prompt)
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return nil, ErrNoContentParts
	}

	for _, p := range cand.Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			buf, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decoding image data: %w", err)
			}
			return buf, nil
		}
	}
	return nil, ErrNoImageData
}

func (c *Client) generateContent(ctx context.Context, model, prompt string) (*generateResponse, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("AI provider request failed")
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var resp generateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding AI response: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("AI provider error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("AI provider status %d", httpResp.StatusCode)
	}
	return &resp, nil
}
