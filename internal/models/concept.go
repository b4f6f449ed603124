package models

// RawConcept is one extraction result tied to a single document.
// Immutable once written; a re-run of the document's job replaces the
// document's whole concept set instead of mutating rows.
type RawConcept struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	Term       string `gorm:"size:255;not null;index" json:"term"`
	Definition string `gorm:"type:text;not null" json:"definition"`
	Example    string `gorm:"type:text" json:"example,omitempty"`
	PageNumber int    `gorm:"default:1" json:"pageNumber"`
	DocumentID string `gorm:"size:36;index;not null" json:"documentId"`
}
