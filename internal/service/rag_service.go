package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"wiki-chatbot-be/internal/config"
	"wiki-chatbot-be/internal/dto"
	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/pkg/logger"
	"wiki-chatbot-be/internal/repository/cache"
	"wiki-chatbot-be/internal/repository/memory"
	"wiki-chatbot-be/pkg/rag"
)

const (
	defaultDocumentLimit = 100
	maxDocumentLimit     = 500
)

// IRagService exposes the RAG document and search operations to authenticated users.
type IRagService interface {
	Search(ctx context.Context, request *dto.SearchRequest) (*rag.SearchResponse, error)
	UploadDocument(ctx context.Context, file *multipart.FileHeader, chunkSize, chunkOverlap int) (*rag.DocumentUploadResponse, error)
	ListDocuments(ctx context.Context, request *dto.ListDocumentsRequest) ([]rag.DocumentInfo, error)
	GetDocument(ctx context.Context, documentId string) (*rag.DocumentInfo, error)
	DeleteDocument(ctx context.Context, documentId string) error
	GetJobStatus(ctx context.Context, jobId string) (*rag.JobStatusResponse, error)
	Health(ctx context.Context) *dto.RagHealthResponse
}

type ragService struct {
	gateway     rag.Gateway
	cfg         config.RagConfig
	healthRepo  *memory.HealthRepository
	jobStatuses cache.JobStatusCache
	logger      logger.ILogger
}

func NewRagService(
	gateway rag.Gateway,
	cfg config.RagConfig,
	healthRepo *memory.HealthRepository,
	jobStatuses cache.JobStatusCache,
	log logger.ILogger,
) IRagService {
	return &ragService{
		gateway:     gateway,
		cfg:         cfg,
		healthRepo:  healthRepo,
		jobStatuses: jobStatuses,
		logger:      log,
	}
}

func (s *ragService) Search(ctx context.Context, request *dto.SearchRequest) (*rag.SearchResponse, error) {
	query := strings.TrimSpace(request.Query)
	if query == "" {
		return nil, apperror.Validation("query", "must not be empty")
	}

	searchRequest := rag.SearchRequest{
		Query:       query,
		TopK:        request.TopK,
		DocumentIds: request.DocumentIds,
		SearchType:  request.SearchType,
	}
	if request.BM25Weight != nil {
		searchRequest.BM25Weight = *request.BM25Weight
	}
	if request.SemanticWeight != nil {
		searchRequest.SemanticWeight = *request.SemanticWeight
	}

	return s.gateway.Search(ctx, searchRequest.WithDefaults())
}

func (s *ragService) UploadDocument(ctx context.Context, file *multipart.FileHeader, chunkSize, chunkOverlap int) (*rag.DocumentUploadResponse, error) {
	if file == nil || file.Size == 0 {
		return nil, apperror.Validation("file", "no file uploaded")
	}
	if file.Size > s.cfg.MaxUploadBytes {
		return nil, apperror.Validation("file", fmt.Sprintf("file size exceeds %dMB limit", s.cfg.MaxUploadBytes/(1024*1024)))
	}

	if chunkSize <= 0 {
		chunkSize = s.cfg.DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = s.defaultOverlap(chunkSize)
	}
	if chunkOverlap >= chunkSize {
		return nil, apperror.Validation("chunk_overlap", "must be smaller than chunk_size")
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	s.logger.Info("RagService", "Uploading document", map[string]interface{}{
		"filename": file.Filename,
		"size":     file.Size,
	})
	return s.gateway.UploadDocument(ctx, src, file.Filename, chunkSize, chunkOverlap)
}

func (s *ragService) ListDocuments(ctx context.Context, request *dto.ListDocumentsRequest) ([]rag.DocumentInfo, error) {
	skip := request.Skip
	if skip < 0 {
		skip = 0
	}
	limit := request.Limit
	if limit <= 0 {
		limit = defaultDocumentLimit
	}
	if limit > maxDocumentLimit {
		limit = maxDocumentLimit
	}
	return s.gateway.ListDocuments(ctx, skip, limit)
}

func (s *ragService) GetDocument(ctx context.Context, documentId string) (*rag.DocumentInfo, error) {
	doc, err := s.gateway.GetDocument(ctx, documentId)
	if err != nil {
		return nil, notFoundOnUpstream404(err, "document", documentId)
	}
	return doc, nil
}

func (s *ragService) DeleteDocument(ctx context.Context, documentId string) error {
	deleted, err := s.gateway.DeleteDocument(ctx, documentId)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("document", documentId)
	}
	return nil
}

func (s *ragService) GetJobStatus(ctx context.Context, jobId string) (*rag.JobStatusResponse, error) {
	cached, found, err := s.jobStatuses.Get(ctx, jobId)
	if err != nil {
		s.logger.Warn("RagService", "Job status cache read failed", map[string]interface{}{"error": err.Error(), "job_id": jobId})
	}
	if found {
		return cached, nil
	}

	status, err := s.gateway.GetJobStatus(ctx, jobId)
	if err != nil {
		return nil, notFoundOnUpstream404(err, "job", jobId)
	}

	if err := s.jobStatuses.Set(ctx, status); err != nil {
		s.logger.Warn("RagService", "Job status cache write failed", map[string]interface{}{"error": err.Error(), "job_id": jobId})
	}
	return status, nil
}

func (s *ragService) Health(ctx context.Context) *dto.RagHealthResponse {
	healthy, found := s.healthRepo.Get()
	if !found {
		healthy = s.gateway.HealthCheck(ctx)
		s.healthRepo.Save(healthy)
		if !healthy {
			s.logger.Warn("RagService", "RAG service health check failed", nil)
		}
	}

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	return &dto.RagHealthResponse{Healthy: healthy, Status: status}
}

// defaultOverlap keeps the configured overlap ratio when a caller shrinks the
// chunk size below the configured overlap.
func (s *ragService) defaultOverlap(chunkSize int) int {
	overlap := s.cfg.DefaultChunkOverlap
	if overlap < chunkSize {
		return overlap
	}
	if s.cfg.DefaultChunkSize > 0 {
		overlap = chunkSize * s.cfg.DefaultChunkOverlap / s.cfg.DefaultChunkSize
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return overlap
}

func notFoundOnUpstream404(err error, resource, id string) error {
	var upstream *apperror.UpstreamUnavailableError
	if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
		return apperror.NotFound(resource, id)
	}
	return err
}
