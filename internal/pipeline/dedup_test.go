package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicateLongestDefinitionWins(t *testing.T) {
	candidates := []Candidate{
		{Term: "Array", Definition: "A"},
		{Term: "array", Definition: "A longer definition"},
		{Term: "ARRAY", Definition: "B"},
	}

	merged := Deduplicate(candidates)

	require.Len(t, merged, 1)
	assert.Equal(t, "Array", merged[0].Term) // first-seen casing
	assert.Equal(t, "A longer definition", merged[0].Definition)
	assert.Equal(t, 3, merged[0].Occurrences)
}

func TestDeduplicateEqualLengthKeepsFirst(t *testing.T) {
	candidates := []Candidate{
		{Term: "Graph", Definition: "first def"},
		{Term: "graph", Definition: "other def"},
	}

	merged := Deduplicate(candidates)

	require.Len(t, merged, 1)
	assert.Equal(t, "first def", merged[0].Definition)
}

func TestDeduplicateAccumulatesSets(t *testing.T) {
	candidates := []Candidate{
		{Term: "Tree", Definition: "short", PageNumber: 2, DocumentID: "doc-1"},
		{Term: "tree", Definition: "a bit longer", PageNumber: 5, DocumentID: "doc-2"},
		{Term: "Tree ", Definition: "x", PageNumber: 2, DocumentID: "doc-1"},
	}

	merged := Deduplicate(candidates)

	require.Len(t, merged, 1)
	assert.Equal(t, []int{2, 5}, merged[0].Pages)
	assert.Equal(t, []string{"doc-1", "doc-2"}, merged[0].DocumentIDs)
	assert.Equal(t, 3, merged[0].Occurrences)
}

func TestDeduplicatePreservesFirstSeenOrder(t *testing.T) {
	candidates := []Candidate{
		{Term: "Beta", Definition: "b"},
		{Term: "Alpha", Definition: "a"},
		{Term: "beta", Definition: "bb"},
	}

	merged := Deduplicate(candidates)

	require.Len(t, merged, 2)
	assert.Equal(t, "Beta", merged[0].Term)
	assert.Equal(t, "Alpha", merged[1].Term)
}

func TestDeduplicateKeepsFirstExample(t *testing.T) {
	candidates := []Candidate{
		{Term: "Map", Definition: "short"},
		{Term: "map", Definition: "much longer definition", Example: "m := map[string]int{}"},
	}

	merged := Deduplicate(candidates)

	require.Len(t, merged, 1)
	assert.Equal(t, "m := map[string]int{}", merged[0].Example)
	assert.Equal(t, "much longer definition", merged[0].Definition)
}

func TestDeduplicateEmptyInput(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
