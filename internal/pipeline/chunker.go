package pipeline

import (
	"regexp"
	"strings"
)

var paragraphSplit = regexp.MustCompile(`\n\n+`)

// Chunk splits text into paragraph-aligned segments of at most maxSize
// characters. Paragraphs accumulate greedily: the buffer is flushed as
// a chunk once the next paragraph would push it past the limit. A
// single paragraph larger than maxSize becomes its own oversized
// chunk rather than being split mid-sentence.
//
// Chunks shorter than minSize are dropped as noise. The result may be
// empty; callers treat that as a document with nothing to extract,
// not an error.
func Chunk(text string, maxSize, minSize int) []string {
	paragraphs := paragraphSplit.Split(text, -1)

	var chunks []string
	var current strings.Builder

	for _, para := range paragraphs {
		if current.Len()+len(para) <= maxSize {
			current.WriteString(para)
			current.WriteString("\n\n")
			continue
		}

		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(para)
		current.WriteString("\n\n")
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	filtered := chunks[:0]
	for _, c := range chunks {
		if len(c) > minSize {
			filtered = append(filtered, c)
		}
	}

	return filtered
}
