// Package openaiadapter is the concrete translator.Translator and
// summarizer.Summarizer backing BridgeOS's "translation_provider=openai"
// configuration (spec §6). It is a hand-rolled net/http client against
// the Responses API, grounded on the teacher's own
// internal/platform/openai client — the teacher never vendors an OpenAI
// SDK either, it calls the HTTP API directly with a bearer token.
package openaiadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bridgeos/bridgeos/internal/pkg/logger"
	"github.com/bridgeos/bridgeos/internal/pkg/retry"
	"github.com/bridgeos/bridgeos/internal/platform/summarizer"
	"github.com/bridgeos/bridgeos/internal/platform/translator"
)

const defaultBaseURL = "https://api.openai.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	log        *logger.Logger
}

func New(apiKey, model string, log *logger.Logger) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		log:        log.With("platform", "openaiadapter.Client"),
	}
}

type responsesRequest struct {
	Model string `json:"model"`
	Input []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"input"`
}

type responsesResponse struct {
	Output []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Translate implements translator.Translator using the sender's/manager's
// industry and the recipient's gender as steering context (spec §4.6), and
// the preceding Context lines as few-shot grounding.
func (c *Client) Translate(ctx context.Context, req translator.Request) (string, error) {
	system := fmt.Sprintf(
		"You are a precise real-time translator for an agricultural workplace messaging relay. "+
			"Translate from %s to %s. Preserve meaning, tone, and any numbers or proper nouns exactly. "+
			"Industry context: %s. Recipient gender (for grammatical gender where applicable): %s. "+
			"Return ONLY the translated text, no commentary.",
		req.FromLanguage, req.ToLanguage, req.Industry, req.Gender,
	)
	var b strings.Builder
	for _, line := range req.Context {
		fmt.Fprintf(&b, "[%s]: %s\n", line.SenderLanguage, line.Text)
	}
	b.WriteString(req.Text)

	return c.generateText(ctx, system, b.String())
}

// Extract implements summarizer.Summarizer's daily highlight extraction
// (spec §4.10): extract a flat bullet list of action items, safety issues
// and equipment notes in targetLanguage.
func (c *Client) Extract(ctx context.Context, messages []summarizer.MessageLine, targetLanguage string) ([]string, error) {
	if len(messages) == 0 {
		return []string{}, nil
	}
	system := fmt.Sprintf(
		"Extract, do not summarize: from a day's worth of farm-operations chat messages, list every "+
			"action item, safety issue, and equipment note as a flat bullet list, written in %s. "+
			"Return each bullet on its own line, no numbering, no preamble.", targetLanguage,
	)
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "[%s]: %s\n", m.SenderLanguage, m.Text)
	}

	text, err := c.generateText(ctx, system, b.String())
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func (c *Client) generateText(ctx context.Context, system, user string) (string, error) {
	reqBody := responsesRequest{Model: c.model}
	reqBody.Input = []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal translation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build translation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call translation provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("translation provider returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return "", retry.NewTransientError(statusErr)
		}
		return "", statusErr
	}

	var out responsesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode translation response: %w", err)
	}
	for _, item := range out.Output {
		for _, content := range item.Content {
			if strings.TrimSpace(content.Text) != "" {
				return strings.TrimSpace(content.Text), nil
			}
		}
	}
	return "", fmt.Errorf("translation provider returned no text")
}
