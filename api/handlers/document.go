package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/concept-graph/internal/service/ingestion"
	"github.com/feichai0017/concept-graph/pkg/logger"
)

type DocumentHandler struct {
	service ingestion.Service
	logger  logger.Logger
}

// UploadResponse 定义上传响应结构
type UploadResponse struct {
	DocumentID string `json:"documentId"`
	JobID      string `json:"jobId"`
	Status     string `json:"status"`
	Filename   string `json:"filename"`
	FileSize   int64  `json:"fileSize"`
	FileType   string `json:"fileType"`
	UploadedAt string `json:"uploadedAt"`
}

func NewDocumentHandler(service ingestion.Service, logger logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger,
	}
}

// Upload 接收文档并立即返回任务标识
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "Invalid file upload", err)
		return
	}
	defer file.Close()

	subjectID := c.PostForm("subjectId")
	if subjectID == "" {
		handleError(c, h.logger, http.StatusBadRequest, "Subject ID is required", nil)
		return
	}

	result, err := h.service.UploadDocument(c.Request.Context(), file, header, subjectID)
	if err != nil {
		handleError(c, h.logger, statusForUpload(err), "Failed to accept document", err)
		return
	}

	c.JSON(http.StatusAccepted, UploadResponse{
		DocumentID: result.Document.ID,
		JobID:      result.JobID,
		Status:     string(result.Document.ProcessingStatus),
		Filename:   header.Filename,
		FileSize:   header.Size,
		FileType:   filepath.Ext(header.Filename),
		UploadedAt: result.Document.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetStatus 获取文档处理状态
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	documentID := c.Param("documentId")
	if documentID == "" {
		handleError(c, h.logger, http.StatusBadRequest, "Document ID is required", nil)
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), documentID)
	if err != nil {
		handleError(c, h.logger, statusFor(err), "Failed to get status", err)
		return
	}

	resp := gin.H{
		"documentId":       status.Document.ID,
		"title":            status.Document.Title,
		"processingStatus": string(status.Document.ProcessingStatus),
		"uploadedAt":       status.Document.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if status.Document.ProcessingError != "" {
		resp["processingError"] = status.Document.ProcessingError
	}
	if status.Job != nil {
		resp["job"] = status.Job
	}

	c.JSON(http.StatusOK, resp)
}

// Delete 删除文档及其概念
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID := c.Param("documentId")
	if documentID == "" {
		handleError(c, h.logger, http.StatusBadRequest, "Document ID is required", nil)
		return
	}

	if err := h.service.DeleteDocument(c.Request.Context(), documentID); err != nil {
		handleError(c, h.logger, statusFor(err), "Failed to delete document", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Document deleted",
		"documentId": documentID,
	})
}

// statusForUpload keeps caller mistakes (bad type, size, unknown
// subject) out of the 5xx bucket.
func statusForUpload(err error) int {
	if status := statusFor(err); status != http.StatusInternalServerError {
		return status
	}
	msg := err.Error()
	for _, fragment := range []string{"unsupported file type", "file size exceeds", "empty upload"} {
		if strings.Contains(msg, fragment) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
