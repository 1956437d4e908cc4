package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/EllouziMedAmin/Pedagogical-RAG/llm"
	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

// MapHTTPError converts an upstream HTTP status into a structured error.
func MapHTTPError(status int, msg, provider string) *types.Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.NewError(types.ErrUnauthorized, msg).
			WithHTTPStatus(status).
			WithProvider(provider)
	case http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, msg).
			WithHTTPStatus(status).
			WithRetryable(true).
			WithProvider(provider)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return types.NewError(types.ErrUpstreamTimeout, msg).
			WithHTTPStatus(status).
			WithRetryable(true).
			WithProvider(provider)
	default:
		if status >= 500 {
			return types.NewError(types.ErrUpstreamError, msg).
				WithHTTPStatus(status).
				WithRetryable(true).
				WithProvider(provider)
		}
		return types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(status).
			WithProvider(provider)
	}
}

// ReadErrorMessage extracts a human-readable message from an upstream error
// body, falling back to the raw text.
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}

	return string(data)
}

// ChooseModel picks the request model, then the configured default, then the
// fallback.
func ChooseModel(req *llm.ChatRequest, defaultModel, fallbackModel string) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	if defaultModel != "" {
		return defaultModel
	}
	return fallbackModel
}

// BearerTokenHeaders is the standard Bearer token auth header builder.
func BearerTokenHeaders(r *http.Request, apiKey string) {
	r.Header.Set("Authorization", "Bearer "+apiKey)
	r.Header.Set("Content-Type", "application/json")
}

// =============================================================================
// OpenAI-compatible wire types
// =============================================================================

// OpenAICompatMessage is the OpenAI-compatible message format. Content is
// either a plain string or an array of content parts for multimodal input.
type OpenAICompatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// OpenAICompatRequest is the OpenAI-compatible chat completion request body.
type OpenAICompatRequest struct {
	Model       string                `json:"model"`
	Messages    []OpenAICompatMessage `json:"messages"`
	MaxTokens   int                   `json:"max_tokens,omitempty"`
	Temperature float32               `json:"temperature,omitempty"`
	TopP        float32               `json:"top_p,omitempty"`
	Stream      bool                  `json:"stream,omitempty"`
}

// OpenAICompatUsage is the OpenAI-compatible token usage block.
type OpenAICompatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAICompatChoice is the OpenAI-compatible completion choice.
type OpenAICompatChoice struct {
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
	Message      struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

// OpenAICompatResponse is the OpenAI-compatible chat completion response body.
type OpenAICompatResponse struct {
	ID      string               `json:"id"`
	Model   string               `json:"model"`
	Created int64                `json:"created"`
	Choices []OpenAICompatChoice `json:"choices"`
	Usage   *OpenAICompatUsage   `json:"usage,omitempty"`
}

// ConvertMessagesToOpenAI converts unified messages to the wire format.
// Messages carrying multimodal parts are encoded as content-part arrays.
func ConvertMessagesToOpenAI(messages []llm.Message) []OpenAICompatMessage {
	out := make([]OpenAICompatMessage, 0, len(messages))
	for _, msg := range messages {
		wire := OpenAICompatMessage{Role: string(msg.Role)}
		if len(msg.Parts) > 0 {
			parts := make([]llm.ContentPart, len(msg.Parts))
			copy(parts, msg.Parts)
			wire.Content = parts
		} else {
			wire.Content = msg.Content
		}
		out = append(out, wire)
	}
	return out
}

// TrimBaseURL normalizes a configured base URL for endpoint construction.
func TrimBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}
