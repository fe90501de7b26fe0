package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mvarga/claimsdesk/internal/core/domain"
	"github.com/mvarga/claimsdesk/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible LLM gateway: chat completions for
// text refinement and report generation, embeddings for the knowledge base.
type Client struct {
	baseURL    string
	apiKey     string
	chatModel  string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func New(baseURL, apiKey, chatModel, embedModel string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		chatModel:  chatModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) chat(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool, operation string) (string, error) {
	req := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	}
	if jsonMode {
		req.ResponseFormat = map[string]any{"type": "json_object"}
	}

	var resp chatResponse
	if err := c.postJSON(ctx, "/chat/completions", req, &resp, operation); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gateway %s: response has no choices", operation)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Refiner fixes grammar in anonymized text via the chat model.
type Refiner struct {
	client *Client
}

func NewRefiner(client *Client) *Refiner {
	return &Refiner{client: client}
}

func (r *Refiner) Refine(ctx context.Context, text string) (string, error) {
	return r.client.chat(ctx, refineSystemPrompt, text, false, "refine")
}

// ReportEngine turns a prompt pair into the five-field analysis object.
type ReportEngine struct {
	client *Client
}

func NewReportEngine(client *Client) *ReportEngine {
	return &ReportEngine{client: client}
}

func (e *ReportEngine) GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (domain.ReportContent, error) {
	raw, err := e.client.chat(ctx, systemPrompt, userPrompt, true, "report")
	if err != nil {
		return domain.ReportContent{}, err
	}

	var content domain.ReportContent
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &content); err != nil {
		return domain.ReportContent{}, fmt.Errorf("parse report json: %w", err)
	}
	return content, nil
}

// Embedder builds vectors for knowledge chunks and queries.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}
	var resp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := e.client.postJSON(ctx, "/embeddings", req, &resp, "embed"); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}
