package dlp

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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/mvarga/claimsdesk/internal/infrastructure/resilience"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

type Config struct {
	ProjectID       string
	CredentialsJSON []byte

	// Endpoint overrides the DLP API endpoint. Tests point it at a local
	// server.
	Endpoint string
}

// Client de-identifies text through the Google DLP content:deidentify API.
// Every detected span is replaced with its info-type placeholder, e.g.
// "[PERSON_NAME]".
type Client struct {
	endpoint   string
	deidPath   string
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

func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("dlp: project is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://dlp.googleapis.com"
	}

	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		deidPath: fmt.Sprintf("/v2/projects/%s/content:deidentify", cfg.ProjectID),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		if len(cfg.CredentialsJSON) == 0 {
			return nil, fmt.Errorf("dlp: service account credentials are required")
		}
		jwtCfg, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("dlp: parse credentials: %w", err)
		}
		c.httpClient = oauth2.NewClient(ctx, jwtCfg.TokenSource(ctx))
		c.httpClient.Timeout = 60 * time.Second
	}
	return c, nil
}

type infoType struct {
	Name string `json:"name"`
}

type deidentifyRequest struct {
	InspectConfig    inspectConfig    `json:"inspectConfig"`
	DeidentifyConfig deidentifyConfig `json:"deidentifyConfig"`
	Item             contentItem      `json:"item"`
}

type inspectConfig struct {
	InfoTypes []infoType `json:"infoTypes"`
}

type deidentifyConfig struct {
	InfoTypeTransformations infoTypeTransformations `json:"infoTypeTransformations"`
}

type infoTypeTransformations struct {
	Transformations []transformation `json:"transformations"`
}

type transformation struct {
	PrimitiveTransformation primitiveTransformation `json:"primitiveTransformation"`
}

type primitiveTransformation struct {
	ReplaceWithInfoTypeConfig struct{} `json:"replaceWithInfoTypeConfig"`
}

type contentItem struct {
	Value string `json:"value"`
}

type deidentifyResponse struct {
	Item contentItem `json:"item"`
}

// Deidentify replaces every span matching the given info types with a typed
// placeholder.
func (c *Client) Deidentify(ctx context.Context, text string, infoTypes []string) (string, error) {
	if len(infoTypes) == 0 {
		return "", fmt.Errorf("dlp: no info types given")
	}

	var redacted string
	call := func(ctx context.Context) error {
		out, err := c.deidentify(ctx, text, infoTypes)
		if err != nil {
			return err
		}
		redacted = out
		return nil
	}

	if c.executor != nil {
		if err := c.executor.Execute(ctx, "dlp.deidentify", call, classifyDLPError); err != nil {
			return "", err
		}
		return redacted, nil
	}
	if err := call(ctx); err != nil {
		return "", err
	}
	return redacted, nil
}

func (c *Client) deidentify(ctx context.Context, text string, infoTypes []string) (string, error) {
	payload := deidentifyRequest{
		Item: contentItem{Value: text},
		DeidentifyConfig: deidentifyConfig{
			InfoTypeTransformations: infoTypeTransformations{
				Transformations: []transformation{{}},
			},
		},
	}
	for _, name := range infoTypes {
		payload.InspectConfig.InfoTypes = append(payload.InspectConfig.InfoTypes, infoType{Name: name})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal deidentify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+c.deidPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create deidentify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dlp deidentify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("dlp deidentify status: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out deidentifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode deidentify response: %w", err)
	}
	return out.Item.Value, nil
}

func classifyDLPError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}
