// Package rag describes the contract of the external retrieval-augmented
// generation service. The HTTP implementation lives in pkg/rag/client.
package rag

import (
	"context"
	"io"
)

const (
	SearchTypeHybrid   = "hybrid"
	SearchTypeBM25     = "bm25"
	SearchTypeSemantic = "semantic"

	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Gateway is the typed client for the RAG service. Every failure is reported as
// *apperror.UpstreamUnavailableError except HealthCheck, which never fails.
type Gateway interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	UploadDocument(ctx context.Context, file io.Reader, filename string, chunkSize, chunkOverlap int) (*DocumentUploadResponse, error)
	ListDocuments(ctx context.Context, skip, limit int) ([]DocumentInfo, error)
	GetDocument(ctx context.Context, documentId string) (*DocumentInfo, error)
	DeleteDocument(ctx context.Context, documentId string) (bool, error)
	GetJobStatus(ctx context.Context, jobId string) (*JobStatusResponse, error)
	HealthCheck(ctx context.Context) bool
}

// IsTerminalJobStatus reports whether a job will not change status again.
func IsTerminalJobStatus(status string) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}
