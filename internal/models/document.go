package models

import (
	"time"
)

// ProcessingStatus 文档处理状态
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Subject groups documents and their extracted concepts.
type Subject struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Document is one uploaded source file. The ingestion worker is the
// only writer of ProcessingStatus and ProcessingError after intake.
type Document struct {
	ID               string           `gorm:"primaryKey;size:36" json:"id"`
	Title            string           `gorm:"size:512;not null" json:"title"`
	StorageRef       string           `gorm:"size:512;not null" json:"storageRef"`
	FileSize         int64            `json:"fileSize"`
	SubjectID        string           `gorm:"size:36;index;not null" json:"subjectId"`
	ProcessingStatus ProcessingStatus `gorm:"size:16;default:pending" json:"processingStatus"`
	ProcessingError  string           `gorm:"type:text" json:"processingError,omitempty"`
	UploadedAt       time.Time        `gorm:"autoCreateTime" json:"uploadedAt"`
}
