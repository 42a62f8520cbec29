package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/pkg/rag"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 120 * time.Second

	maxErrorBody = 512
)

// Client talks to the RAG service over HTTP/JSON. Calls are never retried.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// Ensure Client implements rag.Gateway
var _ rag.Gateway = &Client{}

type Option func(*Client)

// WithHTTPClient replaces the traced default client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.Client = c
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Chat(ctx context.Context, req rag.ChatRequest) (*rag.ChatResponse, error) {
	var out rag.ChatResponse
	if err := c.doJSON(ctx, "chat", http.MethodPost, "/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(ctx context.Context, req rag.SearchRequest) (*rag.SearchResponse, error) {
	var out rag.SearchResponse
	if err := c.doJSON(ctx, "search", http.MethodPost, "/api/v1/search", req.WithDefaults(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadDocument(ctx context.Context, file io.Reader, filename string, chunkSize, chunkOverlap int) (*rag.DocumentUploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := writer.WriteField("chunk_size", strconv.Itoa(chunkSize)); err != nil {
		return nil, fmt.Errorf("write chunk_size: %w", err)
	}
	if err := writer.WriteField("chunk_overlap", strconv.Itoa(chunkOverlap)); err != nil {
		return nil, fmt.Errorf("write chunk_overlap: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var out rag.DocumentUploadResponse
	if err := c.do(ctx, "upload", http.MethodPost, "/api/v1/process", &body, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListDocuments(ctx context.Context, skip, limit int) ([]rag.DocumentInfo, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	out := []rag.DocumentInfo{}
	if err := c.do(ctx, "list documents", http.MethodGet, "/api/v1/documents?"+query.Encode(), nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDocument(ctx context.Context, documentId string) (*rag.DocumentInfo, error) {
	var out rag.DocumentInfo
	if err := c.do(ctx, "get document", http.MethodGet, "/api/v1/documents/"+url.PathEscape(documentId), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument reports false without an error when the document does not exist upstream.
func (c *Client) DeleteDocument(ctx context.Context, documentId string) (bool, error) {
	err := c.do(ctx, "delete document", http.MethodDelete, "/api/v1/documents/"+url.PathEscape(documentId), nil, "", nil)
	if err != nil {
		var upstream *apperror.UpstreamUnavailableError
		if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) GetJobStatus(ctx context.Context, jobId string) (*rag.JobStatusResponse, error) {
	var out rag.JobStatusResponse
	if err := c.do(ctx, "job status", http.MethodGet, "/api/v1/status/"+url.PathEscape(jobId), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) HealthCheck(ctx context.Context) bool {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, "", nil) == nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, payload, out interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, op, method, path, bytes.NewReader(payloadBytes), "application/json", out)
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		message := "request failed"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			message = "timeout"
		}
		return &apperror.UpstreamUnavailableError{Operation: op, Message: message, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperror.UpstreamUnavailableError{Operation: op, StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperror.UpstreamUnavailableError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    truncate(strings.TrimSpace(string(bodyBytes)), maxErrorBody),
		}
	}

	if out == nil || len(bodyBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return &apperror.UpstreamUnavailableError{Operation: op, StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
