package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSplitsOnParagraphBoundaries(t *testing.T) {
	// 9 paragraphs of 948 chars plus one of 950, blank-line separated:
	// 9500 characters in total.
	paragraphs := make([]string, 0, 10)
	for i := 0; i < 9; i++ {
		paragraphs = append(paragraphs, strings.Repeat("a", 948))
	}
	paragraphs = append(paragraphs, strings.Repeat("b", 950))
	text := strings.Join(paragraphs, "\n\n")
	require.Equal(t, 9500, len(text))

	chunks := Chunk(text, 4000, 100)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 4000)
	}
	// Order is preserved: the final paragraph lands in the last chunk.
	assert.True(t, strings.HasSuffix(chunks[2], strings.Repeat("b", 950)))
}

func TestChunkDropsNoiseChunks(t *testing.T) {
	text := strings.Repeat("long paragraph content ", 20) + "\n\n" + strings.Repeat("x", 50)

	chunks := Chunk(text, 400, 100)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Greater(t, len(c), 100)
	}
}

func TestChunkAllNoiseYieldsEmpty(t *testing.T) {
	text := "tiny\n\nbits\n\nof text"

	chunks := Chunk(text, 4000, 100)

	assert.Empty(t, chunks)
}

func TestChunkEmptyText(t *testing.T) {
	assert.Empty(t, Chunk("", 4000, 100))
}

func TestChunkOversizedParagraphStaysWhole(t *testing.T) {
	big := strings.Repeat("c", 5000)
	text := strings.Repeat("a", 200) + "\n\n" + big

	chunks := Chunk(text, 4000, 100)

	require.Len(t, chunks, 2)
	assert.Equal(t, big, chunks[1])
}

func TestChunkIsDeterministic(t *testing.T) {
	text := strings.Repeat("some paragraph text here ", 30) + "\n\n" + strings.Repeat("more text ", 40)

	first := Chunk(text, 300, 100)
	second := Chunk(text, 300, 100)

	assert.Equal(t, first, second)
}
