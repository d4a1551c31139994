// Package textsplit cuts documents into overlapping chunks for embedding.
package textsplit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

// DefaultSeparators tries paragraphs, then lines, then words, then characters
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter recursively splits text on a separator hierarchy until every
// piece fits the chunk size, then merges neighbours back into chunks that
// share up to the overlap.
type Splitter struct {
	splitter textsplitter.RecursiveCharacter
}

// New creates a splitter. Sizes are counted in runes.
func New(chunkSize, chunkOverlap int, separators ...string) *Splitter {
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	if chunkSize < 1 {
		chunkSize = 1
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}

	return &Splitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(separators),
			textsplitter.WithLenFunc(utf8.RuneCountInString),
		),
	}
}

// Split returns the non-blank chunks of text, trimmed, in document order. Blank input yields nil.
func (s *Splitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}

	return out, nil
}
