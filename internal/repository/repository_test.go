package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feichai0017/concept-graph/internal/models"
	"github.com/feichai0017/concept-graph/pkg/logger"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Subject{}, &models.Document{}, &models.RawConcept{}))

	return New(db, logger.NewTestLogger())
}

func seedSubject(t *testing.T, repo *Repository, id string) {
	t.Helper()
	require.NoError(t, repo.CreateSubject(context.Background(), &models.Subject{
		ID:   id,
		Name: "Subject " + id,
	}))
}

func seedDocument(t *testing.T, repo *Repository, id, subjectID string) {
	t.Helper()
	require.NoError(t, repo.CreateDocument(context.Background(), &models.Document{
		ID:               id,
		Title:            id + ".pdf",
		StorageRef:       id + ".pdf",
		SubjectID:        subjectID,
		ProcessingStatus: models.StatusPending,
	}))
}

func TestSubjectCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seedSubject(t, repo, "sub-1")

	got, err := repo.GetSubject(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Subject sub-1", got.Name)

	subjects, err := repo.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, 1)

	_, err = repo.GetSubject(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDocumentStatus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seedSubject(t, repo, "sub-1")
	seedDocument(t, repo, "doc-1", "sub-1")

	require.NoError(t, repo.UpdateDocumentStatus(ctx, "doc-1", models.StatusFailed, "boom"))
	doc, err := repo.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, doc.ProcessingStatus)
	assert.Equal(t, "boom", doc.ProcessingError)

	// moving out of failed clears the stored error
	require.NoError(t, repo.UpdateDocumentStatus(ctx, "doc-1", models.StatusProcessing, ""))
	doc, err = repo.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, doc.ProcessingStatus)
	assert.Empty(t, doc.ProcessingError)

	err = repo.UpdateDocumentStatus(ctx, "missing", models.StatusCompleted, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceConceptsIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seedSubject(t, repo, "sub-1")
	seedDocument(t, repo, "doc-1", "sub-1")

	first := []models.RawConcept{
		{ID: "c-1", Term: "Stack", Definition: "LIFO structure", DocumentID: "doc-1", PageNumber: 1},
		{ID: "c-2", Term: "Queue", Definition: "FIFO structure", DocumentID: "doc-1", PageNumber: 2},
	}
	require.NoError(t, repo.ReplaceConcepts(ctx, "doc-1", first))

	// a retried job writes a fresh set; the old rows must not survive
	second := []models.RawConcept{
		{ID: "c-3", Term: "Heap", Definition: "priority structure", DocumentID: "doc-1", PageNumber: 3},
	}
	require.NoError(t, repo.ReplaceConcepts(ctx, "doc-1", second))

	concepts, err := repo.ConceptsByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, concepts, 1)
	assert.Equal(t, "Heap", concepts[0].Term)
}

func TestDeleteSubjectCascades(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seedSubject(t, repo, "sub-1")
	seedDocument(t, repo, "doc-1", "sub-1")
	require.NoError(t, repo.ReplaceConcepts(ctx, "doc-1", []models.RawConcept{
		{ID: "c-1", Term: "Tree", Definition: "hierarchical structure", DocumentID: "doc-1"},
	}))

	require.NoError(t, repo.DeleteSubject(ctx, "sub-1"))

	_, err := repo.GetSubject(ctx, "sub-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, ErrNotFound)

	concepts, err := repo.ConceptsByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, concepts)
}

func TestConceptsBySubjectSpansDocuments(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seedSubject(t, repo, "sub-1")
	seedSubject(t, repo, "sub-2")
	seedDocument(t, repo, "doc-1", "sub-1")
	seedDocument(t, repo, "doc-2", "sub-1")
	seedDocument(t, repo, "doc-3", "sub-2")

	require.NoError(t, repo.ReplaceConcepts(ctx, "doc-1", []models.RawConcept{
		{ID: "c-1", Term: "Graph", Definition: "nodes and edges", DocumentID: "doc-1"},
	}))
	require.NoError(t, repo.ReplaceConcepts(ctx, "doc-2", []models.RawConcept{
		{ID: "c-2", Term: "Edge", Definition: "a connection", DocumentID: "doc-2"},
	}))
	require.NoError(t, repo.ReplaceConcepts(ctx, "doc-3", []models.RawConcept{
		{ID: "c-3", Term: "Other", Definition: "belongs elsewhere", DocumentID: "doc-3"},
	}))

	concepts, err := repo.ConceptsBySubject(ctx, "sub-1")
	require.NoError(t, err)
	require.Len(t, concepts, 2)
}

func TestSearchConcepts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seedSubject(t, repo, "sub-1")
	seedDocument(t, repo, "doc-1", "sub-1")
	require.NoError(t, repo.ReplaceConcepts(ctx, "doc-1", []models.RawConcept{
		{ID: "c-1", Term: "Binary Tree", Definition: "two children max", DocumentID: "doc-1"},
		{ID: "c-2", Term: "Hash Table", Definition: "key value store", DocumentID: "doc-1"},
	}))

	found, err := repo.SearchConcepts(ctx, "sub-1", "tree")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Binary Tree", found[0].Term)
}

func TestGetAndDeleteConcept(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seedSubject(t, repo, "sub-1")
	seedDocument(t, repo, "doc-1", "sub-1")
	require.NoError(t, repo.ReplaceConcepts(ctx, "doc-1", []models.RawConcept{
		{ID: "c-1", Term: "Trie", Definition: "prefix tree", DocumentID: "doc-1"},
	}))

	concept, err := repo.GetConcept(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", concept.DocumentID)

	require.NoError(t, repo.DeleteConcept(ctx, "c-1"))
	_, err = repo.GetConcept(ctx, "c-1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.DeleteConcept(ctx, "c-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
