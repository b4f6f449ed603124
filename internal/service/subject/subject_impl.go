package subject

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feichai0017/concept-graph/internal/graph"
	"github.com/feichai0017/concept-graph/internal/models"
	"github.com/feichai0017/concept-graph/internal/repository"
	"github.com/feichai0017/concept-graph/pkg/cache"
	"github.com/feichai0017/concept-graph/pkg/logger"
)

// graphCacheTTL bounds staleness when invalidation is missed, e.g.
// the cache was unreachable at write time.
const graphCacheTTL = 10 * time.Minute

type SubjectService struct {
	repo   *repository.Repository
	cache  *cache.Cache
	logger logger.Logger
}

func NewService(repo *repository.Repository, c *cache.Cache, log logger.Logger) Service {
	return &SubjectService{
		repo:   repo,
		cache:  c,
		logger: log,
	}
}

func (s *SubjectService) CreateSubject(ctx context.Context, name, description string) (*models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("subject name is required")
	}

	subject := &models.Subject{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}

	s.logger.Info("Subject created",
		logger.String("subjectId", subject.ID),
		logger.String("name", subject.Name),
	)
	return subject, nil
}

func (s *SubjectService) GetSubject(ctx context.Context, subjectID string) (*models.Subject, error) {
	return s.repo.GetSubject(ctx, subjectID)
}

func (s *SubjectService) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	return s.repo.ListSubjects(ctx)
}

func (s *SubjectService) DeleteSubject(ctx context.Context, subjectID string) error {
	if err := s.repo.DeleteSubject(ctx, subjectID); err != nil {
		return err
	}

	s.cache.InvalidateSubject(ctx, subjectID)

	s.logger.Info("Subject deleted",
		logger.String("subjectId", subjectID),
	)
	return nil
}

func (s *SubjectService) ListDocuments(ctx context.Context, subjectID string) ([]models.Document, error) {
	if _, err := s.repo.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.repo.ListDocumentsBySubject(ctx, subjectID)
}

// GetGraph assembles the subject's concept graph from whatever is
// persisted right now. Partially processed documents appear as bare
// source nodes.
func (s *SubjectService) GetGraph(ctx context.Context, subjectID string) (*graph.Graph, error) {
	if _, err := s.repo.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}

	key := cache.SubjectGraphKey(subjectID)
	var cached graph.Graph
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	documents, err := s.repo.ListDocumentsBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	concepts, err := s.repo.ConceptsBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	g := graph.Assemble(documents, concepts)
	s.cache.SetJSON(ctx, key, g, graphCacheTTL)

	s.logger.Debug("Subject graph assembled",
		logger.String("subjectId", subjectID),
		logger.Int("nodes", len(g.Nodes)),
		logger.Int("links", len(g.Links)),
	)
	return g, nil
}

func (s *SubjectService) DeleteConcept(ctx context.Context, conceptID string) error {
	concept, err := s.repo.GetConcept(ctx, conceptID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteConcept(ctx, conceptID); err != nil {
		return err
	}

	// 找到所属学科以失效缓存
	if doc, err := s.repo.GetDocument(ctx, concept.DocumentID); err == nil {
		s.cache.InvalidateSubject(ctx, doc.SubjectID)
	}

	s.logger.Info("Concept deleted",
		logger.String("conceptId", conceptID),
	)
	return nil
}

func (s *SubjectService) SearchConcepts(ctx context.Context, subjectID, term string) ([]models.RawConcept, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("search term is required")
	}
	if _, err := s.repo.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.repo.SearchConcepts(ctx, subjectID, term)
}
