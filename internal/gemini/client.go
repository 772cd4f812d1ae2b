// Package gemini is a thin client for the Google Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/fluxstudio/fluxstudio-go/internal/model"
)

const maxResponseBytes = 10 << 20

// visionPatterns are model id fragments known to accept image input.
var visionPatterns = []string{
	"gemini-1.5",
	"gemini-2.0",
	"gemini-pro-vision",
	"gemini-exp",
	"gemini-2.5",
}

var recommendedModels = map[string]bool{
	"gemini-1.5-flash": true,
	"gemini-2.0-flash": true,
}

// DefaultModels is served when the upstream model list is unavailable.
func DefaultModels() []model.GeminiModel {
	return []model.GeminiModel{
		{ID: "gemini-1.5-flash", DisplayName: "Gemini 1.5 Flash", SupportsVision: true, IsRecommended: true},
		{ID: "gemini-1.5-pro", DisplayName: "Gemini 1.5 Pro", SupportsVision: true},
		{ID: "gemini-2.0-flash-exp", DisplayName: "Gemini 2.0 Flash (Experimental)", SupportsVision: true},
		{ID: "gemini-pro-vision", DisplayName: "Gemini Pro Vision", SupportsVision: true},
		{ID: "gemini-pro", DisplayName: "Gemini Pro", SupportsVision: false},
	}
}

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	Status  int
	Message string
	// Details is the upstream "error" object, passed through to clients.
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: status %d: %s", e.Status, e.Message)
}

// Client talks to the Gemini REST API. The API key travels in a header so
// it never appears in URLs or in transport errors.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for baseURL, e.g. https://generativelanguage.googleapis.com/v1beta.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type upstreamModel struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

type upstreamError struct {
	Error json.RawMessage `json:"error"`
}

// ListModels returns the models that support generateContent, recommended
// models first, then vision-capable ones, then by display name.
func (c *Client) ListModels(ctx context.Context, apiKey string) ([]model.GeminiModel, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/models", apiKey, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, newAPIError(status, body)
	}

	var payload struct {
		Models []upstreamModel `json:"models"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding model list: %w", err)
	}

	return filterModels(payload.Models), nil
}

func filterModels(in []upstreamModel) []model.GeminiModel {
	models := make([]model.GeminiModel, 0, len(in))
	for _, m := range in {
		if !slices.Contains(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		id := strings.TrimPrefix(m.Name, "models/")
		name := m.DisplayName
		if name == "" {
			name = id
		}
		models = append(models, model.GeminiModel{
			ID:             id,
			DisplayName:    name,
			SupportsVision: supportsVision(id),
			IsRecommended:  recommendedModels[id],
		})
	}

	slices.SortStableFunc(models, func(a, b model.GeminiModel) int {
		if a.IsRecommended != b.IsRecommended {
			if a.IsRecommended {
				return -1
			}
			return 1
		}
		if a.SupportsVision != b.SupportsVision {
			if a.SupportsVision {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName))
	})
	return models
}

func supportsVision(id string) bool {
	id = strings.ToLower(id)
	for _, p := range visionPatterns {
		if strings.Contains(id, p) {
			return true
		}
	}
	return false
}

// GenerateRequest is the upstream generateContent body.
type GenerateRequest struct {
	Contents         []json.RawMessage      `json:"contents"`
	GenerationConfig model.GenerationConfig `json:"generationConfig"`
}

// GenerateContent forwards req to models/{modelID}:generateContent and returns
// the raw upstream JSON. Non-2xx answers come back as *APIError.
func (c *Client) GenerateContent(ctx context.Context, apiKey, modelID string, req GenerateRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	body, status, err := c.do(ctx, http.MethodPost, "/models/"+url.PathEscape(modelID)+":generateContent", apiKey, payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, newAPIError(status, body)
	}
	if !json.Valid(body) {
		return nil, errors.New("gemini: upstream returned invalid JSON")
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, method, path, apiKey string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("x-goog-api-key", apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("reading gemini response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// newAPIError turns an upstream error body into a client-facing message.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: "Gemini API error"}

	var env upstreamError
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 || string(env.Error) == "null" {
		return apiErr
	}
	apiErr.Details = env.Error

	var detail struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(env.Error, &detail)

	switch status {
	case http.StatusTooManyRequests:
		apiErr.Message = "API quota exceeded. Please try again later or check your billing."
	case http.StatusForbidden:
		apiErr.Message = "API key invalid or doesn't have permission. Please check your API key."
	case http.StatusBadRequest:
		apiErr.Message = "Invalid request to Gemini API"
		if detail.Message != "" {
			apiErr.Message = detail.Message
		}
	default:
		if detail.Message != "" {
			apiErr.Message = detail.Message
		}
	}
	return apiErr
}
