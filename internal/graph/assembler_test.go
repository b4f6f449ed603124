package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/concept-graph/internal/models"
)

func TestAssembleCollapsesDuplicateEdges(t *testing.T) {
	docs := []models.Document{{ID: "doc-1", Title: "Lecture 1"}}
	concepts := []models.RawConcept{
		{Term: "Pointer", Definition: "an address", DocumentID: "doc-1", PageNumber: 1},
		{Term: "pointer", Definition: "a memory address value", DocumentID: "doc-1", PageNumber: 4},
	}

	g := Assemble(docs, concepts)

	require.Len(t, g.Links, 1)
	assert.Equal(t, "FILE_doc-1", g.Links[0].Source)
	assert.Equal(t, "pointer", g.Links[0].Target)
}

func TestAssembleMergesAcrossDocuments(t *testing.T) {
	docs := []models.Document{
		{ID: "doc-1", Title: "Lecture 1"},
		{ID: "doc-2", Title: "Lecture 2"},
	}
	concepts := []models.RawConcept{
		{Term: "Recursion", Definition: "short", DocumentID: "doc-1", PageNumber: 2},
		{Term: "recursion", Definition: "a function calling itself", DocumentID: "doc-2", PageNumber: 7},
	}

	g := Assemble(docs, concepts)

	var conceptNodes []Node
	for _, n := range g.Nodes {
		if n.Type == "Concept" {
			conceptNodes = append(conceptNodes, n)
		}
	}
	require.Len(t, conceptNodes, 1)

	node := conceptNodes[0]
	assert.Equal(t, "Recursion", node.Name)
	assert.Equal(t, "a function calling itself", node.Definition)
	assert.Equal(t, 2, node.Occurrences)
	assert.Equal(t, 10+2*2, node.Val)
	assert.Equal(t, sharedConceptColor, node.Color)
	assert.ElementsMatch(t, []string{"doc-1", "doc-2"}, node.DocumentIDs)

	// one edge per contributing document
	assert.Len(t, g.Links, 2)
}

func TestAssembleSourceNodes(t *testing.T) {
	docs := []models.Document{
		{ID: "doc-1", Title: "Intro"},
		{ID: "doc-2", Title: "Advanced"},
	}

	g := Assemble(docs, nil)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "FILE_doc-1", g.Nodes[0].ID)
	assert.Equal(t, "Source", g.Nodes[0].Type)
	assert.Equal(t, sourceNodeVal, g.Nodes[0].Val)
	assert.Empty(t, g.Links)
}

func TestAssembleWeightIsMonotonic(t *testing.T) {
	docs := []models.Document{{ID: "doc-1", Title: "Doc"}}
	concepts := []models.RawConcept{
		{Term: "Once", Definition: "seen once", DocumentID: "doc-1"},
		{Term: "Thrice", Definition: "seen more", DocumentID: "doc-1"},
		{Term: "thrice", Definition: "again", DocumentID: "doc-1"},
		{Term: "THRICE", Definition: "and again", DocumentID: "doc-1"},
	}

	g := Assemble(docs, concepts)

	byName := make(map[string]Node)
	for _, n := range g.Nodes {
		byName[n.Name] = n
	}
	assert.Greater(t, byName["Thrice"].Val, byName["Once"].Val)
}

func TestAssembleToleratesPartiallyProcessedSubject(t *testing.T) {
	docs := []models.Document{
		{ID: "doc-1", Title: "Done", ProcessingStatus: models.StatusCompleted},
		{ID: "doc-2", Title: "Still running", ProcessingStatus: models.StatusProcessing},
	}
	concepts := []models.RawConcept{
		{Term: "Closure", Definition: "captured scope", DocumentID: "doc-1"},
	}

	g := Assemble(docs, concepts)

	// both documents render; only the completed one has edges
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Links, 1)
	assert.Equal(t, "FILE_doc-1", g.Links[0].Source)
}

func TestAssembleDeterministic(t *testing.T) {
	docs := []models.Document{{ID: "doc-1", Title: "Doc"}}
	concepts := []models.RawConcept{
		{Term: "B", Definition: "b", DocumentID: "doc-1"},
		{Term: "A", Definition: "a", DocumentID: "doc-1"},
	}

	first := Assemble(docs, concepts)
	second := Assemble(docs, concepts)

	assert.Equal(t, first, second)
}
