package entity

// ChatRequest is the body of POST /api/chat. Message is a pointer so a missing field can be told apart from "".
type ChatRequest struct {
	Message *string `json:"message"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

type HealthResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ToolsResponse struct {
	Tools []ToolInfo `json:"tools"`
}

// ErrorResponse mirrors the {"detail": ...} error body clients of this API expect
type ErrorResponse struct {
	Detail string `json:"detail"`
}
