package graph

import (
	"github.com/feichai0017/concept-graph/internal/models"
	"github.com/feichai0017/concept-graph/internal/pipeline"
)

const (
	sourceNodePrefix = "FILE_"

	sourceNodeVal  = 30
	conceptBaseVal = 10
	conceptValStep = 2

	sourceColor        = "#ef4444"
	conceptColor       = "#3b82f6"
	sharedConceptColor = "#f59e0b"
)

// Node is one display node, either a document source or a merged
// concept.
type Node struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Val         int      `json:"val"`
	Color       string   `json:"color"`
	Definition  string   `json:"definition,omitempty"`
	Example     string   `json:"example,omitempty"`
	Page        int      `json:"page,omitempty"`
	DocumentID  string   `json:"documentId,omitempty"`
	Occurrences int      `json:"occurrences,omitempty"`
	Pages       []int    `json:"allPages,omitempty"`
	DocumentIDs []string `json:"allDocumentIds,omitempty"`
}

// Link connects a source node to a concept node.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the display graph for one subject.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Assemble builds the subject graph from whatever is currently
// persisted. Documents still mid-processing simply contribute fewer
// concepts; the assembly never fails on a partially-updated set.
func Assemble(documents []models.Document, concepts []models.RawConcept) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0, len(documents)+len(concepts)),
		Links: make([]Link, 0, len(concepts)),
	}

	for _, doc := range documents {
		g.Nodes = append(g.Nodes, Node{
			ID:    sourceNodePrefix + doc.ID,
			Name:  doc.Title,
			Type:  "Source",
			Val:   sourceNodeVal,
			Color: sourceColor,
		})
	}

	// Cross-document merge shares the single dedup policy so the
	// one-node-per-normalized-term invariant holds here.
	candidates := make([]pipeline.Candidate, 0, len(concepts))
	for _, c := range concepts {
		candidates = append(candidates, pipeline.Candidate{
			Term:       c.Term,
			Definition: c.Definition,
			Example:    c.Example,
			PageNumber: c.PageNumber,
			DocumentID: c.DocumentID,
		})
	}

	for _, merged := range pipeline.Deduplicate(candidates) {
		node := Node{
			ID:          pipeline.NormalizeTerm(merged.Term),
			Name:        merged.Term,
			Type:        "Concept",
			Val:         conceptBaseVal + conceptValStep*merged.Occurrences,
			Color:       conceptColor,
			Definition:  merged.Definition,
			Example:     merged.Example,
			Occurrences: merged.Occurrences,
			Pages:       merged.Pages,
			DocumentIDs: merged.DocumentIDs,
		}
		if len(merged.Pages) > 0 {
			node.Page = merged.Pages[0]
		}
		if len(merged.DocumentIDs) > 0 {
			node.DocumentID = merged.DocumentIDs[0]
		}
		if merged.Occurrences > 1 {
			node.Color = sharedConceptColor
		}
		g.Nodes = append(g.Nodes, node)
	}

	// Collapse duplicate document→concept edges.
	seen := make(map[Link]struct{}, len(concepts))
	for _, c := range concepts {
		link := Link{
			Source: sourceNodePrefix + c.DocumentID,
			Target: pipeline.NormalizeTerm(c.Term),
		}
		if link.Target == "" {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		g.Links = append(g.Links, link)
	}

	return g
}
