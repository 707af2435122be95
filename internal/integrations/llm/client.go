package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"
const defaultOpenAIBaseURL = "https://api.openai.com/v1"

const defaultSystemPrompt = "You are an operations analyst for a university campus. You estimate queues and demand at campus service desks. Be concise."

// Field names one key of the JSON object a Request asks for.
type Field struct {
	Name string
	Type string
}

type Request struct {
	Task   string // short label for logs
	Prompt string
	Schema []Field
}

// Client talks to one configured provider. A single attempt is made per
// Complete call; the caller owns the deadline through ctx.
type Client struct {
	provider string
	model    string
	apiKey   string
	baseURL  string
	http     *http.Client

	anthropic anthropic.Client
}

// NewClient returns (nil, false) when the configured provider has no
// credential, so callers can treat a missing oracle as normal.
func NewClient(cfg Config) (*Client, bool) {
	if !cfg.OracleConfigured() {
		return nil, false
	}
	c := &Client{
		provider: cfg.LLMProvider,
		model:    cfg.LLMModel,
		http:     externalHTTPClient,
	}
	switch cfg.LLMProvider {
	case "anthropic":
		c.apiKey = cfg.AnthropicAPIKey
		if c.model == "" {
			c.model = defaultAnthropicModel
		}
		c.anthropic = anthropic.NewClient(
			option.WithAPIKey(c.apiKey),
			option.WithHTTPClient(c.http),
			option.WithMaxRetries(0),
		)
	case "openai":
		c.apiKey = cfg.OpenAIAPIKey
		if c.model == "" {
			c.model = defaultOpenAIModel
		}
		c.baseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
		if c.baseURL == "" {
			c.baseURL = defaultOpenAIBaseURL
		}
	}
	return c, true
}

func (c *Client) Provider() string {
	return c.provider
}

func (c *Client) Model() string {
	return c.model
}

// Complete sends one prompt and returns the raw model text.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c == nil {
		return "", ErrOracleNotConfigured
	}
	system := systemPrompt(req.Schema)

	var (
		text string
		err  error
	)
	switch c.provider {
	case "anthropic":
		text, err = c.callAnthropic(ctx, req.Task, system, req.Prompt)
	case "openai":
		text, err = c.callOpenAI(ctx, req.Task, system, req.Prompt, len(req.Schema) > 0)
	default:
		return "", ErrOracleNotConfigured
	}
	if err != nil {
		return "", classifyError(ctx, err)
	}
	return text, nil
}

func systemPrompt(schema []Field) string {
	if len(schema) == 0 {
		return defaultSystemPrompt
	}
	parts := make([]string, 0, len(schema))
	for _, f := range schema {
		parts = append(parts, fmt.Sprintf("%q (%s)", f.Name, f.Type))
	}
	return defaultSystemPrompt + "\nRespond with a single JSON object and nothing else. Keys: " + strings.Join(parts, ", ") + "."
}

func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, ErrOracleUnavailable) || errors.Is(err, ErrOracleTimeout) || errors.Is(err, ErrOracleMalformedResponse) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrOracleTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
}

// --- Anthropic ---

func (c *Client) callAnthropic(ctx context.Context, task, systemPrompt, userPrompt string) (string, error) {
	message, err := c.anthropic.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error task=%s: %v", task, err)
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response task=%s size=%d tokens_in=%d tokens_out=%d", task, len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text content in Anthropic response", ErrOracleMalformedResponse)
}

// --- OpenAI ---

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) callOpenAI(ctx context.Context, task, systemPrompt, userPrompt string, wantJSON bool) (string, error) {
	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	if wantJSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("llm openai error task=%s: %v", task, err)
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("OpenAI API status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("%w: parsing OpenAI response: %v", ErrOracleMalformedResponse, err)
	}
	if openAIResp.Error != nil {
		log.Printf("llm openai api error task=%s: %s", task, openAIResp.Error.Message)
		return "", fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("OpenAI API status %d", resp.StatusCode)
	}
	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in OpenAI response", ErrOracleMalformedResponse)
	}

	var tokensIn, tokensOut int64
	if openAIResp.Usage != nil {
		tokensIn = openAIResp.Usage.PromptTokens
		tokensOut = openAIResp.Usage.CompletionTokens
	}
	log.Printf("llm openai response task=%s size=%d tokens_in=%d tokens_out=%d", task, len(openAIResp.Choices[0].Message.Content), tokensIn, tokensOut)
	return openAIResp.Choices[0].Message.Content, nil
}
