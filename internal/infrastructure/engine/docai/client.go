package docai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/mvarga/claimsdesk/internal/infrastructure/resilience"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

type Config struct {
	ProjectID       string
	Location        string
	ProcessorID     string
	CredentialsJSON []byte

	// Endpoint overrides the regional Document AI endpoint. Tests point it
	// at a local server.
	Endpoint string
}

// Client runs OCR through a Google Document AI processor.
type Client struct {
	endpoint    string
	processPath string
	httpClient  *http.Client
	executor    *resilience.Executor
}

type Option func(*Client)

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Location == "" || cfg.ProcessorID == "" {
		return nil, fmt.Errorf("docai: project, location and processor are required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s-documentai.googleapis.com", cfg.Location)
	}

	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		processPath: fmt.Sprintf("/v1/projects/%s/locations/%s/processors/%s:process",
			cfg.ProjectID, cfg.Location, cfg.ProcessorID),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		if len(cfg.CredentialsJSON) == 0 {
			return nil, fmt.Errorf("docai: service account credentials are required")
		}
		jwtCfg, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("docai: parse credentials: %w", err)
		}
		c.httpClient = oauth2.NewClient(ctx, jwtCfg.TokenSource(ctx))
		c.httpClient.Timeout = 120 * time.Second
	}
	return c, nil
}

type processRequest struct {
	RawDocument rawDocument `json:"rawDocument"`
}

type rawDocument struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

type processResponse struct {
	Document struct {
		Text string `json:"text"`
	} `json:"document"`
}

// ExtractText sends the file bytes through the OCR processor and returns
// the recognized plain text.
func (c *Client) ExtractText(ctx context.Context, content []byte, mimeType string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("docai: empty document content")
	}

	var text string
	call := func(ctx context.Context) error {
		out, err := c.process(ctx, content, mimeType)
		if err != nil {
			return err
		}
		text = out
		return nil
	}

	if c.executor != nil {
		if err := c.executor.Execute(ctx, "docai.process", call, classifyGoogleError); err != nil {
			return "", err
		}
		return text, nil
	}
	if err := call(ctx); err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) process(ctx context.Context, content []byte, mimeType string) (string, error) {
	payload := processRequest{
		RawDocument: rawDocument{
			Content:  base64.StdEncoding.EncodeToString(content),
			MimeType: mimeType,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal process request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+c.processPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create process request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("docai process request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("docai process status: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out processResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode process response: %w", err)
	}
	return out.Document.Text, nil
}
