package entity

import "errors"

// Domain errors
var (
	// Chat errors
	ErrEmptyReply = errors.New("llm returned an empty reply")

	// Knowledge base errors
	ErrInvalidURL          = errors.New("invalid url")
	ErrEmptyURLList        = errors.New("url list is empty")
	ErrEmbedderUnavailable = errors.New("embedder is not configured")
	ErrNoDocuments         = errors.New("no documents could be loaded")
	ErrEmptyDocument       = errors.New("document content is empty")
	ErrIndexBuild          = errors.New("failed to build document index")

	// Forex errors
	ErrUpstreamStatus = errors.New("forex api returned a failure status")

	// Validation errors
	ErrMissingField      = errors.New("required field is missing")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
