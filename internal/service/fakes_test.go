package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/repository/contract"
	"wiki-chatbot-be/internal/repository/unitofwork"
	"wiki-chatbot-be/pkg/events"
	"wiki-chatbot-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type fakeGateway struct {
	mu        sync.Mutex
	chatCalls int
	chatFn    func(ctx context.Context, req rag.ChatRequest) (*rag.ChatResponse, error)

	healthCalls int
	healthy     bool

	jobCalls int
	jobFn    func(jobId string) (*rag.JobStatusResponse, error)

	documentFn func(id string) (*rag.DocumentInfo, error)
	deleteFn   func(id string) (bool, error)

	lastSearch rag.SearchRequest
	lastUpload struct {
		filename     string
		content      string
		chunkSize    int
		chunkOverlap int
	}
	lastList struct{ skip, limit int }
}

var _ rag.Gateway = &fakeGateway{}

func answering(answer string) *fakeGateway {
	return &fakeGateway{
		chatFn: func(ctx context.Context, req rag.ChatRequest) (*rag.ChatResponse, error) {
			return &rag.ChatResponse{Question: req.Question, Answer: answer, Metadata: map[string]interface{}{"source": "test"}}, nil
		},
	}
}

func failing(err error) *fakeGateway {
	return &fakeGateway{
		chatFn: func(ctx context.Context, req rag.ChatRequest) (*rag.ChatResponse, error) {
			return nil, err
		},
	}
}

func (g *fakeGateway) Chat(ctx context.Context, req rag.ChatRequest) (*rag.ChatResponse, error) {
	g.mu.Lock()
	g.chatCalls++
	g.mu.Unlock()
	return g.chatFn(ctx, req)
}

func (g *fakeGateway) Search(ctx context.Context, req rag.SearchRequest) (*rag.SearchResponse, error) {
	g.lastSearch = req
	return &rag.SearchResponse{Query: req.Query, SearchType: req.SearchType}, nil
}

func (g *fakeGateway) UploadDocument(ctx context.Context, file io.Reader, filename string, chunkSize, chunkOverlap int) (*rag.DocumentUploadResponse, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	g.lastUpload.filename = filename
	g.lastUpload.content = string(content)
	g.lastUpload.chunkSize = chunkSize
	g.lastUpload.chunkOverlap = chunkOverlap
	return &rag.DocumentUploadResponse{TotalFiles: 1, Results: []rag.FileUploadResult{{Filename: filename, Status: "processing"}}}, nil
}

func (g *fakeGateway) ListDocuments(ctx context.Context, skip, limit int) ([]rag.DocumentInfo, error) {
	g.lastList.skip = skip
	g.lastList.limit = limit
	return []rag.DocumentInfo{}, nil
}

func (g *fakeGateway) GetDocument(ctx context.Context, documentId string) (*rag.DocumentInfo, error) {
	return g.documentFn(documentId)
}

func (g *fakeGateway) DeleteDocument(ctx context.Context, documentId string) (bool, error) {
	return g.deleteFn(documentId)
}

func (g *fakeGateway) GetJobStatus(ctx context.Context, jobId string) (*rag.JobStatusResponse, error) {
	g.jobCalls++
	return g.jobFn(jobId)
}

func (g *fakeGateway) HealthCheck(ctx context.Context) bool {
	g.healthCalls++
	return g.healthy
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// brokenHistoryFactory makes every history insert fail while the rest of the
// unit of work behaves normally.
type brokenHistoryFactory struct {
	inner unitofwork.RepositoryFactory
}

func (f *brokenHistoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &brokenHistoryUow{UnitOfWork: f.inner.NewUnitOfWork(ctx)}
}

type brokenHistoryUow struct {
	unitofwork.UnitOfWork
}

func (u *brokenHistoryUow) ChatHistoryRepository() contract.ChatHistoryRepository {
	return &brokenHistoryRepo{ChatHistoryRepository: u.UnitOfWork.ChatHistoryRepository()}
}

type brokenHistoryRepo struct {
	contract.ChatHistoryRepository
}

var errDiskFull = errors.New("disk full")

func (r *brokenHistoryRepo) Create(ctx context.Context, history *entity.ChatHistory) error {
	return errDiskFull
}

var errRagDown = &apperror.UpstreamUnavailableError{Operation: "chat", StatusCode: 503, Message: "down"}

func messageWithPayload(payload string) *message.Message {
	return message.NewMessage(watermill.NewUUID(), []byte(payload))
}
