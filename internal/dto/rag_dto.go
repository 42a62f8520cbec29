package dto

type SearchRequest struct {
	Query          string   `json:"query" validate:"required,max=2000"`
	TopK           int      `json:"top_k" validate:"omitempty,min=1,max=100"`
	DocumentIds    []string `json:"document_ids,omitempty"`
	SearchType     string   `json:"search_type" validate:"omitempty,oneof=bm25 semantic hybrid"`
	BM25Weight     *float64 `json:"bm25_weight" validate:"omitempty,min=0,max=1"`
	SemanticWeight *float64 `json:"semantic_weight" validate:"omitempty,min=0,max=1"`
}

type ListDocumentsRequest struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit"`
}

type RagHealthResponse struct {
	Healthy bool   `json:"healthy"`
	Status  string `json:"status"`
}
