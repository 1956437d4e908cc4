package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Model identifiers for the two classifiers the pipeline uses.
const (
	ModelToxicity = "unitary/toxic-bert"
	ModelEmotion  = "j-hartmann/emotion-english-distilroberta-base"
)

// HFConfig configures a HuggingFace inference-API classifier.
type HFConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultHFConfig returns the default HuggingFace config for a model.
func DefaultHFConfig(model string) HFConfig {
	return HFConfig{
		BaseURL: "https://api-inference.huggingface.co",
		Model:   model,
		Timeout: 30 * time.Second,
	}
}

// HFProvider runs text classification against the HuggingFace inference API.
type HFProvider struct {
	cfg    HFConfig
	client *http.Client
}

// NewHFProvider creates a new HuggingFace classifier for the configured model.
func NewHFProvider(cfg HFConfig) *HFProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HFProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *HFProvider) Name() string { return "huggingface/" + p.cfg.Model }

type hfRequest struct {
	Inputs string `json:"inputs"`
}

// Classify sends the text to the inference endpoint and returns scored labels.
func (p *HFProvider) Classify(ctx context.Context, text string) ([]LabelScore, error) {
	payload, _ := json.Marshal(hfRequest{Inputs: text})

	endpoint := fmt.Sprintf("%s/models/%s", strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if p.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("classification error: status=%d model=%s", resp.StatusCode, p.cfg.Model)
	}

	// The inference API wraps text-classification results in an outer array
	// per input; some deployments return the flat form.
	var nested [][]LabelScore
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []LabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("unexpected classification payload: %w", err)
	}
	return flat, nil
}
