// Package pinata pins artifacts (token images and metadata documents)
// to IPFS through the Pinata pinning API and returns gateway URIs.
package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Default service endpoints.
const (
	DefaultEndpoint = "https://api.pinata.cloud"
	DefaultGateway  = "https://gateway.pinata.cloud"
	DefaultTimeout  = 60 * time.Second
)

// Publisher uploads artifacts and returns stable retrieval URIs.
type Publisher interface {
	// PinFile pins raw bytes under the given filename.
	PinFile(ctx context.Context, filename string, data []byte) (string, error)

	// PinJSON pins a JSON document.
	PinJSON(ctx context.Context, doc interface{}) (string, error)
}

// Client implements Publisher against the Pinata HTTP API.
type Client struct {
	apiKey    string
	secretKey string
	endpoint  string
	gateway   string
	client    *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithGateway overrides the retrieval gateway used in returned URIs.
func WithGateway(gateway string) Option {
	return func(c *Client) {
		c.gateway = gateway
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a Pinata client authenticated with an API key pair.
func NewClient(apiKey, secretKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:    apiKey,
		secretKey: secretKey,
		endpoint:  DefaultEndpoint,
		gateway:   DefaultGateway,
		client:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pinResponse is the API's answer to both pinning calls.
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// PinFile pins raw bytes as a multipart upload and returns the gateway
// URI for the pinned content.
func (c *Client) PinFile(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	return c.pin(ctx, "/pinning/pinFileToIPFS", &body, mw.FormDataContentType())
}

// PinJSON pins a JSON document and returns the gateway URI.
func (c *Client) PinJSON(ctx context.Context, doc interface{}) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return c.pin(ctx, "/pinning/pinJSONToIPFS", bytes.NewReader(payload), "application/json")
}

func (c *Client) pin(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var pr pinResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if pr.IpfsHash == "" {
		return "", fmt.Errorf("empty IpfsHash in response")
	}

	return fmt.Sprintf("%s/ipfs/%s", c.gateway, pr.IpfsHash), nil
}
