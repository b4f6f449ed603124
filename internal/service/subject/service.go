package subject

import (
	"context"

	"github.com/feichai0017/concept-graph/internal/graph"
	"github.com/feichai0017/concept-graph/internal/models"
)

type Service interface {
	CreateSubject(ctx context.Context, name, description string) (*models.Subject, error)
	GetSubject(ctx context.Context, subjectID string) (*models.Subject, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	DeleteSubject(ctx context.Context, subjectID string) error

	ListDocuments(ctx context.Context, subjectID string) ([]models.Document, error)
	GetGraph(ctx context.Context, subjectID string) (*graph.Graph, error)

	DeleteConcept(ctx context.Context, conceptID string) error
	SearchConcepts(ctx context.Context, subjectID, term string) ([]models.RawConcept, error)
}
