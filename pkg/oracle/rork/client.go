package rork

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/oracle"
)

// Prompts holds the system prompts the toolkit endpoint is driven with.
// Analysis is keyed by report mode.
type Prompts struct {
	Analysis  map[string]string
	Checklist string
}

type Client struct {
	BaseURL string
	Prompts Prompts
	Client  *http.Client
}

// Ensure Client implements both oracle ports
var (
	_ oracle.AnalysisOracle = &Client{}
	_ oracle.ItemOracle     = &Client{}
)

func NewClient(baseURL string, prompts Prompts) *Client {
	return &Client{
		BaseURL: baseURL,
		Prompts: prompts,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type rorkMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type rorkRequest struct {
	Messages []rorkMessage `json:"messages"`
}

type rorkResponse struct {
	Completion string `json:"completion"`
}

func (c *Client) complete(ctx context.Context, messages []rorkMessage) (string, error) {
	payloadBytes, err := json.Marshal(rorkRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/text/llm/"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("rork request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rork error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var rorkResp rorkResponse
	if err := json.Unmarshal(bodyBytes, &rorkResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return rorkResp.Completion, nil
}

// Analyze runs the single finalization analysis call. Transport failures
// are returned to the caller; an unparseable completion degrades to the
// typed fallback payload instead.
func (c *Client) Analyze(ctx context.Context, req oracle.AnalysisRequest) (*oracle.Analysis, error) {
	system, ok := c.Prompts.Analysis[req.Mode]
	if !ok {
		return nil, fmt.Errorf("no analysis prompt for mode %q", req.Mode)
	}

	user := map[string]any{
		"transcript": req.Transcript,
	}
	if req.Template != "" {
		user["template"] = req.Template
	}
	if len(req.ManualEvents) > 0 {
		user["manual_events"] = req.ManualEvents
	}
	userBytes, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis input: %w", err)
	}

	completion, err := c.complete(ctx, []rorkMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: string(userBytes)},
	})
	if err != nil {
		return nil, err
	}

	return oracle.ParseAnalysis(completion), nil
}

// SuggestItems asks for a fresh checklist derived from the transcript.
// Any transport or parse failure is returned as an error so the caller
// keeps its current list for this cycle.
func (c *Client) SuggestItems(ctx context.Context, mode string, transcript string, current []checklist.Item) ([]checklist.Proposed, error) {
	user := map[string]any{
		"mode":         mode,
		"transcript":   transcript,
		"currentItems": current,
	}
	userBytes, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("marshal checklist input: %w", err)
	}

	completion, err := c.complete(ctx, []rorkMessage{
		{Role: "system", Content: c.Prompts.Checklist},
		{Role: "user", Content: string(userBytes)},
	})
	if err != nil {
		return nil, err
	}

	items, err := oracle.ParseItems(completion)
	if err != nil {
		return nil, fmt.Errorf("parse checklist completion: %w", err)
	}
	return items, nil
}
