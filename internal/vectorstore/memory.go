// Package vectorstore holds the in-memory document index used for retrieval.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/philippgille/chromem-go"
)

const (
	collectionName = "documents"
	metaSource     = "source"
)

var (
	ErrEmptyIndex        = errors.New("index needs at least one entry")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// errNoEmbedder is returned if the collection is ever asked to embed text itself
var errNoEmbedder = errors.New("vectors are supplied by the caller")

// Entry is one chunk with its embedding
type Entry struct {
	ID      string
	Passage entity.Passage
	Vector  []float32
}

// Hit is a search result
type Hit struct {
	ID      string
	Passage entity.Passage
	Score   float32
}

// MemoryIndex is a cosine similarity index over a private chromem collection.
// Nothing is added after construction, so it can be shared by concurrent
// searches; replacing it is the owner's job.
type MemoryIndex struct {
	dimensions int
	collection *chromem.Collection
}

// NewMemoryIndex builds an index from entries. IDs must be unique and all
// vectors must share one dimension.
func NewMemoryIndex(ctx context.Context, entries []Entry) (*MemoryIndex, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyIndex
	}

	dims := len(entries[0].Vector)
	if dims == 0 {
		return nil, fmt.Errorf("%w: entry %s has no vector", ErrDimensionMismatch, entries[0].ID)
	}

	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		if len(e.Vector) != dims {
			return nil, fmt.Errorf("%w: entry %s has %d, expected %d", ErrDimensionMismatch, e.ID, len(e.Vector), dims)
		}
		docs[i] = chromem.Document{
			ID:        e.ID,
			Metadata:  map[string]string{metaSource: e.Passage.Source},
			Embedding: append([]float32(nil), e.Vector...),
			Content:   e.Passage.Content,
		}
	}

	collection, err := chromem.NewDB().CreateCollection(collectionName, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}

	if collection.Count() != len(entries) {
		return nil, fmt.Errorf("add documents: %d of %d entries stored, ids must be unique", collection.Count(), len(entries))
	}

	return &MemoryIndex{dimensions: dims, collection: collection}, nil
}

// Search returns up to k entries most similar to query, best first.
// A zero query has no direction and matches nothing.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), m.dimensions)
	}
	if k <= 0 || isZero(query) {
		return nil, nil
	}
	k = min(k, m.collection.Count())

	results, err := m.collection.QueryEmbedding(ctx, append([]float32(nil), query...), k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			ID:      r.ID,
			Passage: entity.Passage{Content: r.Content, Source: r.Metadata[metaSource]},
			Score:   r.Similarity,
		}
	}

	return hits, nil
}

// Size returns the number of entries
func (m *MemoryIndex) Size() int {
	return m.collection.Count()
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedder
}
