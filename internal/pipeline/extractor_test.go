package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/concept-graph/pkg/logger"
)

type fakeProvider struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeProvider) Ask(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestParseConceptsStripsCodeFences(t *testing.T) {
	response := "Here you go:\n```json\n[{\"term\": \"Stack\", \"definition\": \"LIFO structure\", \"pageNumber\": 3}]\n```\nHope that helps!"

	candidates, err := ParseConcepts(response)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Stack", candidates[0].Term)
	assert.Equal(t, "LIFO structure", candidates[0].Definition)
	assert.Equal(t, 3, candidates[0].PageNumber)
}

func TestParseConceptsDropsIncompleteEntries(t *testing.T) {
	response := `[
		{"term": "Queue", "definition": "FIFO structure"},
		{"term": "", "definition": "no term"},
		{"term": "orphan"},
		{"definition": "no term at all"}
	]`

	candidates, err := ParseConcepts(response)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Queue", candidates[0].Term)
	assert.Equal(t, 0, candidates[0].PageNumber) // backfilled by ExtractChunk
}

func TestParseConceptsIgnoresBracketsInsideStrings(t *testing.T) {
	response := `[{"term": "Slice", "definition": "s[1:2] selects elements ] from a slice"}]`

	candidates, err := ParseConcepts(response)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Contains(t, candidates[0].Definition, "s[1:2]")
}

func TestParseConceptsNoArray(t *testing.T) {
	_, err := ParseConcepts("Sorry, I could not process that text.")
	assert.Error(t, err)
}

func TestExtractChunkContainsProviderFailure(t *testing.T) {
	log := logger.NewTestLogger()
	provider := &fakeProvider{err: errors.New("upstream timeout")}
	ex := NewExtractor(provider, nil, log)

	candidates := ex.ExtractChunk(context.Background(), "some chunk text", 1, 3, 10)

	assert.Empty(t, candidates)
	entries := log.GetEntries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "ERROR", entries[len(entries)-1].Level)
}

func TestExtractChunkContainsParseFailure(t *testing.T) {
	log := logger.NewTestLogger()
	provider := &fakeProvider{response: "not json at all"}
	ex := NewExtractor(provider, nil, log)

	candidates := ex.ExtractChunk(context.Background(), "some chunk text", 1, 3, 10)

	assert.Empty(t, candidates)
	assert.NotEmpty(t, log.GetEntries())
}

func TestExtractChunkFillsEstimatedPage(t *testing.T) {
	provider := &fakeProvider{response: `[{"term": "Heap", "definition": "tree-backed priority structure", "pageNumber": 0}]`}
	ex := NewExtractor(provider, nil, logger.NewTestLogger())

	candidates := ex.ExtractChunk(context.Background(), "chunk", 2, 4, 8)

	require.Len(t, candidates, 1)
	assert.Equal(t, 4, candidates[0].PageNumber) // ceil(2/4 * 8)
}

func TestExtractChunkTruncatesPrompt(t *testing.T) {
	provider := &fakeProvider{response: "[]"}
	ex := NewExtractor(provider, nil, logger.NewTestLogger())

	ex.ExtractChunk(context.Background(), strings.Repeat("x", 5000), 1, 1, 1)

	require.Len(t, provider.prompts, 1)
	assert.NotContains(t, provider.prompts[0], strings.Repeat("x", 3001))
}

func TestEstimatePage(t *testing.T) {
	assert.Equal(t, 1, EstimatePage(1, 3, 1))
	assert.Equal(t, 4, EstimatePage(1, 3, 10))
	assert.Equal(t, 10, EstimatePage(3, 3, 10))
	assert.Equal(t, 1, EstimatePage(1, 0, 10))
	assert.Equal(t, 1, EstimatePage(1, 3, 0))
}
