package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/danadoen/nusaai/internal/infra"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Options controls how the Gemini client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Client calls the Gemini generateContent endpoint. The API key is supplied
// per call because it is resolved per caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// Request is a single generateContent call.
type Request struct {
	Model string
	Parts []Part
	// AspectRatio, when set, asks an image model for an image of that shape.
	AspectRatio string
}

// Part is one piece of content. Exactly one of Text or InlineData is set.
type Part struct {
	Text       string
	InlineData *InlineData
}

// InlineData carries base64 encoded bytes with their MIME type.
type InlineData struct {
	MIMEType string
	Data     string
}

// Response is the flattened first candidate returned by the provider.
type Response struct {
	Parts        []Part
	FinishReason string
}

// Text concatenates every text part.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// FirstImage returns the first inline data part, if any.
func (r *Response) FirstImage() *InlineData {
	if r == nil {
		return nil
	}
	for _, part := range r.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			return part.InlineData
		}
	}
	return nil
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini status %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini status %d: %s", e.StatusCode, e.Message)
}

// IsInvalidKey reports whether err means the provider rejected the API key.
func IsInvalidKey(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return strings.Contains(apiErr.Message, "API_KEY_INVALID") ||
		strings.Contains(apiErr.Status, "UNAUTHENTICATED") ||
		strings.Contains(strings.ToLower(apiErr.Message), "api key not valid")
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
		Details []struct {
			Reason string `json:"reason,omitempty"`
		} `json:"details,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client. A nil HTTP client is replaced by one
// using opts.Timeout, or 60s when unset.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}
}

// Generate sends req with apiKey and returns the first candidate.
func (c *Client) Generate(ctx context.Context, apiKey string, req Request) (*Response, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, errors.New("genai: model is required")
	}
	if len(req.Parts) == 0 {
		return nil, errors.New("genai: at least one part is required")
	}

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: toGeminiParts(req.Parts)}},
	}
	if aspect := strings.TrimSpace(req.AspectRatio); aspect != "" {
		payload.GenerationConfig = &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig:        &geminiImageConfig{AspectRatio: aspect},
		}
	}

	start := time.Now()
	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(req.Model))
	if err := c.invokeGemini(ctx, apiKey, path, payload, &response); err != nil {
		c.logger.Warn().
			Err(err).
			Str("model", req.Model).
			Dur("elapsed", time.Since(start)).
			Msg("genai: generate content failed")
		return nil, err
	}

	out := &Response{}
	if len(response.Candidates) > 0 {
		candidate := response.Candidates[0]
		out.FinishReason = candidate.FinishReason
		for _, part := range candidate.Content.Parts {
			out.Parts = append(out.Parts, fromGeminiPart(part))
		}
	}

	c.logger.Debug().
		Str("model", req.Model).
		Int("parts", len(out.Parts)).
		Str("finish_reason", out.FinishReason).
		Dur("elapsed", time.Since(start)).
		Msg("genai: generate content")

	return out, nil
}

func (c *Client) invokeGemini(ctx context.Context, apiKey, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", strings.TrimSpace(apiKey))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var parsed geminiErrorResponse
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.Status = parsed.Error.Status
		for _, d := range parsed.Error.Details {
			if d.Reason != "" {
				apiErr.Message += " (" + d.Reason + ")"
			}
		}
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}

func toGeminiParts(parts []Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		gp := geminiPart{Text: p.Text}
		if p.InlineData != nil {
			gp.InlineData = &geminiInlineData{MimeType: p.InlineData.MIMEType, Data: p.InlineData.Data}
		}
		out = append(out, gp)
	}
	return out
}

func fromGeminiPart(p geminiPart) Part {
	part := Part{Text: p.Text}
	if p.InlineData != nil {
		part.InlineData = &InlineData{MIMEType: p.InlineData.MimeType, Data: p.InlineData.Data}
	}
	return part
}
