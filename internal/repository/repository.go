package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feichai0017/concept-graph/internal/models"
	"github.com/feichai0017/concept-graph/pkg/logger"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type Repository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewDatabase opens the postgres connection and migrates the schema.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Subject{}, &models.Document{}, &models.RawConcept{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

func New(db *gorm.DB, log logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// --- subjects ---

func (r *Repository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if err := r.db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

func (r *Repository) GetSubject(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	err := r.db.WithContext(ctx).First(&subject, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("subject %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return &subject, nil
}

func (r *Repository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

// DeleteSubject removes the subject, its documents and their concepts.
func (r *Repository) DeleteSubject(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var documentIDs []string
		if err := tx.Model(&models.Document{}).Where("subject_id = ?", id).
			Pluck("id", &documentIDs).Error; err != nil {
			return fmt.Errorf("failed to list subject documents: %w", err)
		}

		if len(documentIDs) > 0 {
			if err := tx.Where("document_id IN ?", documentIDs).
				Delete(&models.RawConcept{}).Error; err != nil {
				return fmt.Errorf("failed to delete subject concepts: %w", err)
			}
			if err := tx.Where("subject_id = ?", id).
				Delete(&models.Document{}).Error; err != nil {
				return fmt.Errorf("failed to delete subject documents: %w", err)
			}
		}

		if err := tx.Delete(&models.Subject{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete subject: %w", err)
		}
		return nil
	})
}

// --- documents ---

func (r *Repository) CreateDocument(ctx context.Context, doc *models.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (r *Repository) ListDocumentsBySubject(ctx context.Context, subjectID string) ([]models.Document, error) {
	var docs []models.Document
	if err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("uploaded_at desc").
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// UpdateDocumentStatus writes the status transition. processingError
// is cleared on any non-failed status.
func (r *Repository) UpdateDocumentStatus(ctx context.Context, id string, status models.ProcessingStatus, processingError string) error {
	if status != models.StatusFailed {
		processingError = ""
	}
	result := r.db.WithContext(ctx).Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processing_status": status,
			"processing_error":  processingError,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update document status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteDocument removes the document and its concepts.
func (r *Repository) DeleteDocument(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.RawConcept{}).Error; err != nil {
			return fmt.Errorf("failed to delete document concepts: %w", err)
		}
		if err := tx.Delete(&models.Document{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return nil
	})
}

// --- concepts ---

// ReplaceConcepts supersedes the document's concept set in one
// transaction. A retried job therefore never duplicates rows from an
// earlier partial attempt.
func (r *Repository) ReplaceConcepts(ctx context.Context, documentID string, concepts []models.RawConcept) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&models.RawConcept{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous concepts: %w", err)
		}
		if len(concepts) == 0 {
			return nil
		}
		if err := tx.Create(&concepts).Error; err != nil {
			return fmt.Errorf("failed to create concepts: %w", err)
		}
		return nil
	})
}

func (r *Repository) ConceptsByDocument(ctx context.Context, documentID string) ([]models.RawConcept, error) {
	var concepts []models.RawConcept
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("page_number, term").
		Find(&concepts).Error; err != nil {
		return nil, fmt.Errorf("failed to list document concepts: %w", err)
	}
	return concepts, nil
}

// ConceptsBySubject returns all concepts across the subject's
// documents, including documents still mid-processing.
func (r *Repository) ConceptsBySubject(ctx context.Context, subjectID string) ([]models.RawConcept, error) {
	var concepts []models.RawConcept
	if err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = raw_concepts.document_id").
		Where("documents.subject_id = ?", subjectID).
		Order("raw_concepts.document_id, raw_concepts.page_number, raw_concepts.term").
		Find(&concepts).Error; err != nil {
		return nil, fmt.Errorf("failed to list subject concepts: %w", err)
	}
	return concepts, nil
}

func (r *Repository) GetConcept(ctx context.Context, id string) (*models.RawConcept, error) {
	var concept models.RawConcept
	if err := r.db.WithContext(ctx).First(&concept, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("concept %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get concept: %w", err)
	}
	return &concept, nil
}

func (r *Repository) DeleteConcept(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.RawConcept{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete concept: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("concept %s: %w", id, ErrNotFound)
	}
	return nil
}

// SearchConcepts matches terms within a subject, case-insensitive
// substring match.
func (r *Repository) SearchConcepts(ctx context.Context, subjectID, term string) ([]models.RawConcept, error) {
	var concepts []models.RawConcept
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	if err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = raw_concepts.document_id").
		Where("documents.subject_id = ? AND LOWER(raw_concepts.term) LIKE ?", subjectID, pattern).
		Order("raw_concepts.term").
		Find(&concepts).Error; err != nil {
		return nil, fmt.Errorf("failed to search concepts: %w", err)
	}
	return concepts, nil
}
