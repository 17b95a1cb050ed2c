package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/teemow/inboxchat/internal/instrumentation"
)

const (
	DefaultEndpoint  = "https://api.anthropic.com/v1/messages"
	DefaultModel     = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens = 1024
	apiVersion       = "2023-06-01"
)

var (
	// ErrEmptyCompletion is returned when the endpoint answered without
	// any text left after markup stripping.
	ErrEmptyCompletion = errors.New("llm returned an empty completion")

	// ErrMissingAPIKey is returned by NewClient without a key.
	ErrMissingAPIKey = errors.New("llm api key is not configured")
)

// Role of a message sent to the endpoint.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn of the conversation.
type Message struct {
	Role Role
	Text string
}

// Request is everything sent for one completion.
type Request struct {
	SystemPrompt string
	Turns        []Message
	Utterance    string
}

// Config configures a Client.
type Config struct {
	Endpoint          string
	APIKey            string
	Model             string
	MaxTokens         int
	RequestsPerMinute int
	Timeout           time.Duration
	HTTPClient        *http.Client
	Metrics           *instrumentation.Metrics
}

// APIError is a non-200 answer from the endpoint.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("API error (%d, %s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the completion endpoint.
type Client struct {
	endpoint  string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
	limiter   *rate.Limiter
	metrics   *instrumentation.Metrics
}

// NewClient creates a client. Zero values in cfg fall back to defaults.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Client{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    httpClient,
		limiter:   rate.NewLimiter(limit, 1),
		metrics:   cfg.Metrics,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends req and returns the reply with markup removed.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := instrumentation.StartLLMSpan(ctx, c.model)
	defer span.End()

	start := time.Now()
	text, err := c.complete(ctx, req)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordLLMRequest(ctx, c.model, status, time.Since(start))

	return text, err
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	body := apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    req.SystemPrompt,
		Messages:  buildMessages(req.Turns, req.Utterance),
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var decoded apiErrorResponse
		if json.Unmarshal(respBody, &decoded) == nil && decoded.Error.Message != "" {
			apiErr.Type = decoded.Error.Type
			apiErr.Message = decoded.Error.Message
		}
		return "", apiErr
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}

	text := StripMarkup(strings.Join(parts, ""))
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// buildMessages turns the history into strictly alternating messages that
// start and end with the user, as the Messages API requires.
func buildMessages(turns []Message, utterance string) []apiMessage {
	all := make([]Message, 0, len(turns)+1)
	all = append(all, turns...)
	if strings.TrimSpace(utterance) != "" {
		all = append(all, Message{Role: RoleUser, Text: utterance})
	}

	var messages []apiMessage
	for _, m := range all {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		role := RoleUser
		if m.Role == RoleAssistant {
			role = RoleAssistant
		}
		if len(messages) == 0 && role != RoleUser {
			continue
		}
		if n := len(messages); n > 0 && messages[n-1].Role == string(role) {
			messages[n-1].Content[0].Text += "\n\n" + text
			continue
		}
		messages = append(messages, apiMessage{
			Role:    string(role),
			Content: []apiContentBlock{{Type: "text", Text: text}},
		})
	}

	for len(messages) > 0 && messages[len(messages)-1].Role != string(RoleUser) {
		messages = messages[:len(messages)-1]
	}
	return messages
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
