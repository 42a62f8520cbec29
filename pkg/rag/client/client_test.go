package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/pkg/rag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, WithHTTPClient(srv.Client()))
}

func TestChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, map[string]interface{}{"question": "Who discovered penicillin?", "verbose": false}, req)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"question":"Who discovered penicillin?","answer":"Alexander Fleming.","metadata":{"chunks":2}}`))
	})

	resp, err := c.Chat(context.Background(), rag.ChatRequest{Question: "Who discovered penicillin?"})
	require.NoError(t, err)
	assert.Equal(t, "Alexander Fleming.", resp.Answer)
	assert.Equal(t, float64(2), resp.Metadata["chunks"])
}

func TestChatNon2xxIsUpstreamUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	})

	_, err := c.Chat(context.Background(), rag.ChatRequest{Question: "q"})
	require.Error(t, err)

	var upstream *apperror.UpstreamUnavailableError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "chat", upstream.Operation)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	assert.Contains(t, upstream.Message, "model overloaded")
}

func TestChatTimeoutIsUpstreamUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	httpClient := srv.Client()
	httpClient.Timeout = 50 * time.Millisecond
	c := New(srv.URL, time.Second, WithHTTPClient(httpClient))

	_, err := c.Chat(context.Background(), rag.ChatRequest{Question: "slow"})
	require.Error(t, err)

	var upstream *apperror.UpstreamUnavailableError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 0, upstream.StatusCode)
	assert.Equal(t, "timeout", upstream.Message)
}

func TestChatInvalidBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.Chat(context.Background(), rag.ChatRequest{Question: "q"})
	assert.True(t, apperror.IsUpstreamUnavailable(err))
}

func TestSearchAppliesDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search", r.URL.Path)

		var req rag.SearchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 10, req.TopK)
		assert.Equal(t, rag.SearchTypeHybrid, req.SearchType)
		assert.InDelta(t, 0.6, req.BM25Weight, 1e-9)
		assert.InDelta(t, 0.4, req.SemanticWeight, 1e-9)

		_, _ = w.Write([]byte(`{"query":"curie","results":[{"id":1,"content":"Marie Curie","score":0.9,"document_id":"d1","chunk_index":0}],"total":1,"search_type":"hybrid"}`))
	})

	resp, err := c.Search(context.Background(), rag.SearchRequest{Query: "curie"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "d1", resp.Results[0].DocumentId)
}

func TestUploadDocumentSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/process", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "800", r.FormValue("chunk_size"))
		assert.Equal(t, "150", r.FormValue("chunk_overlap"))

		file, header, err := r.FormFile("files")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "bio.md", header.Filename)
		assert.Equal(t, "# Ada Lovelace", string(content))

		_, _ = w.Write([]byte(`{"total_files":1,"results":[{"filename":"bio.md","status":"processing","job_id":"job-1"}]}`))
	})

	resp, err := c.UploadDocument(context.Background(), strings.NewReader("# Ada Lovelace"), "bio.md", 800, 150)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalFiles)
	require.NotNil(t, resp.Results[0].JobId)
	assert.Equal(t, "job-1", *resp.Results[0].JobId)
}

func TestListAndGetDocuments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/documents":
			assert.Equal(t, "5", r.URL.Query().Get("skip"))
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[{"id":"d1","file_name":"a.md","status":"completed","created_at":"2024-01-01T00:00:00"}]`))
		case "/api/v1/documents/d1":
			_, _ = w.Write([]byte(`{"id":"d1","file_name":"a.md","status":"completed","chunk_count":4}`))
		default:
			http.NotFound(w, r)
		}
	})

	docs, err := c.ListDocuments(context.Background(), 5, 20)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2024-01-01T00:00:00", docs[0].CreatedAt)

	doc, err := c.GetDocument(context.Background(), "d1")
	require.NoError(t, err)
	require.NotNil(t, doc.ChunkCount)
	assert.Equal(t, 4, *doc.ChunkCount)

	_, err = c.GetDocument(context.Background(), "missing")
	var upstream *apperror.UpstreamUnavailableError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
}

func TestDeleteDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		switch r.URL.Path {
		case "/api/v1/documents/d1":
			w.WriteHeader(http.StatusNoContent)
		case "/api/v1/documents/missing":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	ok, err := c.DeleteDocument(context.Background(), "d1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.DeleteDocument(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.DeleteDocument(context.Background(), "broken")
	assert.False(t, ok)
	assert.True(t, apperror.IsUpstreamUnavailable(err))
}

func TestGetJobStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/status/job-9", r.URL.Path)
		_, _ = w.Write([]byte(`{"job_id":"job-9","status":"completed","document_id":"d9","progress":{"percent":100}}`))
	})

	status, err := c.GetJobStatus(context.Background(), "job-9")
	require.NoError(t, err)
	assert.Equal(t, rag.JobStatusCompleted, status.Status)
	assert.True(t, rag.IsTerminalJobStatus(status.Status))
}

func TestHealthCheckNeverErrors(t *testing.T) {
	healthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	assert.True(t, healthy.HealthCheck(context.Background()))

	unhealthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.False(t, unhealthy.HealthCheck(context.Background()))

	unreachable := New("http://127.0.0.1:1", 200*time.Millisecond)
	assert.False(t, unreachable.HealthCheck(context.Background()))
}

func TestNewDefaults(t *testing.T) {
	c := New("", 0)
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, DefaultTimeout, c.Client.Timeout)

	trimmed := New("http://rag:8000/", time.Second)
	assert.Equal(t, "http://rag:8000", trimmed.BaseURL)
}
