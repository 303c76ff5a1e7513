// Package gemini implements domain.Generator on top of the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"dzine-mind/internal/attachment"
	"dzine-mind/internal/domain"
	"dzine-mind/internal/integrations/paramstore"
)

// Getter resolves a named parameter. *paramstore.Client satisfies it.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// tokenPayload is the expected JSON shape stored in SSM for the API key.
type tokenPayload struct {
	Token string `json:"token"`
}

// Client is a Gemini-backed generator. The API key comes from a static
// value or, when that is empty, from Parameter Store on first use.
type Client struct {
	apiKey     string
	getter     Getter
	paramName  string
	baseURL    string
	httpClient *http.Client

	mu     sync.Mutex
	sdk    *genai.Client
	dialer func(ctx context.Context, cc *genai.ClientConfig) (*genai.Client, error)
}

type Option func(*Client)

// WithAPIKey sets a static API key, skipping Parameter Store.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithParamStore resolves the API key from the parameter name using g.
func WithParamStore(g Getter, name string) Option {
	return func(c *Client) {
		c.getter = g
		c.paramName = strings.TrimSpace(name)
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client. A missing credential is not an error here; it
// is reported by Generate as domain.ErrCredentialMissing.
func NewClient(opts ...Option) *Client {
	c := &Client{dialer: genai.NewClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate implements domain.Generator.
func (c *Client) Generate(ctx context.Context, req domain.GenerateRequest) ([]domain.Part, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, errors.New("gemini: model must not be empty")
	}

	client, err := c.resolveClient(ctx)
	if err != nil {
		return nil, err
	}

	contents, err := toContents(req)
	if err != nil {
		return nil, err
	}

	temp := req.Temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	res, err := client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	return fromResponse(res), nil
}

// resolveClient builds the SDK client on first success and reuses it. Failed
// lookups are retried on the next call.
func (c *Client) resolveClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sdk != nil {
		return c.sdk, nil
	}

	key, err := c.resolveAPIKey(ctx)
	if err != nil {
		return nil, err
	}

	cc := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := c.dialer(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.sdk = client
	return client, nil
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	if c.getter == nil || c.paramName == "" {
		return "", fmt.Errorf("gemini: %w", domain.ErrCredentialMissing)
	}

	raw, err := c.getter.GetParameter(ctx, c.paramName)
	if err != nil {
		if errors.Is(err, paramstore.ErrNotFound) {
			return "", fmt.Errorf("gemini: %w: %w", domain.ErrCredentialMissing, err)
		}
		return "", fmt.Errorf("gemini: fetch api key: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("gemini: unmarshal api key parameter as JSON: %w", err)
	}
	if strings.TrimSpace(tp.Token) == "" {
		return "", fmt.Errorf("gemini: %w: empty token", domain.ErrCredentialMissing)
	}
	return tp.Token, nil
}

func toContents(req domain.GenerateRequest) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, h := range req.History {
		parts, err := toParts(h.Parts)
		if err != nil {
			return nil, err
		}
		contents = append(contents, &genai.Content{Role: h.Role, Parts: parts})
	}
	msg, err := toParts(req.Message)
	if err != nil {
		return nil, err
	}
	contents = append(contents, &genai.Content{Role: domain.RoleUser, Parts: msg})
	return contents, nil
}

func toParts(parts []domain.Part) ([]*genai.Part, error) {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Inline == nil {
			out = append(out, &genai.Part{Text: p.Text})
			continue
		}
		raw, err := attachment.Decode(*p.Inline)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		out = append(out, &genai.Part{
			InlineData: &genai.Blob{MIMEType: p.Inline.MIMEType, Data: raw},
		})
	}
	return out, nil
}

// fromResponse flattens the first candidate's parts. Thought parts and
// empty blobs are skipped.
func fromResponse(res *genai.GenerateContentResponse) []domain.Part {
	if res == nil || len(res.Candidates) == 0 {
		return nil
	}
	cand := res.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}

	out := make([]domain.Part, 0, len(cand.Content.Parts))
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		switch {
		case p.InlineData != nil:
			a, err := attachment.Encode(p.InlineData.MIMEType, p.InlineData.Data)
			if err != nil {
				continue
			}
			out = append(out, domain.Part{Inline: &a})
		case p.Text != "":
			out = append(out, domain.Part{Text: p.Text})
		}
	}
	return out
}
