package entity

// Passage is a retrieved chunk of a loaded web page
type Passage struct {
	Content string
	Source  string
}

// Document is the plain-text rendition of a fetched page
type Document struct {
	URL     string
	Title   string
	Content string
}

// IngestResult reports which URLs made it into the index
type IngestResult struct {
	Succeeded []string
	Failed    []string
}

type IndexStatus string

const (
	IndexStatusReady          IndexStatus = "ready"
	IndexStatusNotInitialized IndexStatus = "not_initialized"
	IndexStatusError          IndexStatus = "error"
)

// KnowledgeState is a snapshot of the document index
type KnowledgeState struct {
	Initialized bool
	URLs        []string
	Chunks      int
	Status      IndexStatus
}

type SetURLRequest struct {
	URLs []string `json:"urls"`
}

type SetURLResponse struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	URLs       []string `json:"urls,omitempty"`
	FailedURLs []string `json:"failed_urls,omitempty"`
}

type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type IndexStatusResponse struct {
	Initialized bool        `json:"initialized"`
	CurrentURL  *string     `json:"current_url"`
	URLs        []string    `json:"urls"`
	Status      IndexStatus `json:"status"`
}
