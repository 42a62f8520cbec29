package rag

type ChatRequest struct {
	Question string `json:"question"`
	Verbose  bool   `json:"verbose"`
}

type ChatResponse struct {
	Question string                 `json:"question"`
	Answer   string                 `json:"answer"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type SearchRequest struct {
	Query          string   `json:"query"`
	TopK           int      `json:"top_k"`
	DocumentIds    []string `json:"document_ids,omitempty"`
	SearchType     string   `json:"search_type"`
	BM25Weight     float64  `json:"bm25_weight"`
	SemanticWeight float64  `json:"semantic_weight"`
}

// WithDefaults fills unset fields with the service defaults (top 10, hybrid, 0.6/0.4).
func (r SearchRequest) WithDefaults() SearchRequest {
	if r.TopK <= 0 {
		r.TopK = 10
	}
	if r.SearchType == "" {
		r.SearchType = SearchTypeHybrid
	}
	if r.BM25Weight == 0 && r.SemanticWeight == 0 {
		r.BM25Weight = 0.6
		r.SemanticWeight = 0.4
	}
	return r
}

type SearchResult struct {
	Id         int                    `json:"id"`
	Content    string                 `json:"content"`
	Score      float64                `json:"score"`
	H1         *string                `json:"h1,omitempty"`
	H2         *string                `json:"h2,omitempty"`
	H3         *string                `json:"h3,omitempty"`
	DocumentId string                 `json:"document_id"`
	ChunkIndex int                    `json:"chunk_index"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type SearchResponse struct {
	Query      string         `json:"query"`
	Results    []SearchResult `json:"results"`
	Total      int            `json:"total"`
	SearchType string         `json:"search_type"`
}

type FileUploadResult struct {
	Filename   string  `json:"filename"`
	Status     string  `json:"status"` // processing, duplicate, failed
	JobId      *string `json:"job_id,omitempty"`
	DocumentId *string `json:"document_id,omitempty"`
	Message    *string `json:"message,omitempty"`
}

type DocumentUploadResponse struct {
	TotalFiles int                `json:"total_files"`
	Results    []FileUploadResult `json:"results"`
}

// DocumentInfo keeps CreatedAt as the raw upstream string; the RAG service
// emits ISO timestamps without a zone.
type DocumentInfo struct {
	Id         string                 `json:"id"`
	FilePath   string                 `json:"file_path"`
	FileName   string                 `json:"file_name"`
	SourceType string                 `json:"source_type"`
	Status     string                 `json:"status"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  string                 `json:"created_at"`
	ChunkCount *int                   `json:"chunk_count,omitempty"`
}

type JobStatusResponse struct {
	JobId      string                 `json:"job_id"`
	Status     string                 `json:"status"`
	Message    *string                `json:"message,omitempty"`
	DocumentId *string                `json:"document_id,omitempty"`
	Progress   map[string]interface{} `json:"progress,omitempty"`
}
