package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/concept-graph/internal/service/subject"
	"github.com/feichai0017/concept-graph/pkg/logger"
)

type SubjectHandler struct {
	service subject.Service
	logger  logger.Logger
}

// CreateSubjectRequest 定义创建请求结构
type CreateSubjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func NewSubjectHandler(service subject.Service, logger logger.Logger) *SubjectHandler {
	return &SubjectHandler{
		service: service,
		logger:  logger,
	}
}

// Create 创建学科
func (h *SubjectHandler) Create(c *gin.Context) {
	var req CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	created, err := h.service.CreateSubject(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "Failed to create subject", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get 获取学科
func (h *SubjectHandler) Get(c *gin.Context) {
	subjectID := c.Param("subjectId")

	found, err := h.service.GetSubject(c.Request.Context(), subjectID)
	if err != nil {
		handleError(c, h.logger, statusFor(err), "Failed to get subject", err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// List 列出所有学科
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.service.ListSubjects(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "Failed to list subjects", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

// Delete 删除学科及其全部文档与概念
func (h *SubjectHandler) Delete(c *gin.Context) {
	subjectID := c.Param("subjectId")

	if err := h.service.DeleteSubject(c.Request.Context(), subjectID); err != nil {
		handleError(c, h.logger, statusFor(err), "Failed to delete subject", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Subject deleted",
		"subjectId": subjectID,
	})
}

// ListDocuments 列出学科下的文档
func (h *SubjectHandler) ListDocuments(c *gin.Context) {
	subjectID := c.Param("subjectId")

	documents, err := h.service.ListDocuments(c.Request.Context(), subjectID)
	if err != nil {
		handleError(c, h.logger, statusFor(err), "Failed to list documents", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subjectId": subjectID,
		"documents": documents,
	})
}

// GetGraph 返回学科概念图
func (h *SubjectHandler) GetGraph(c *gin.Context) {
	subjectID := c.Param("subjectId")

	g, err := h.service.GetGraph(c.Request.Context(), subjectID)
	if err != nil {
		handleError(c, h.logger, statusFor(err), "Failed to build graph", err)
		return
	}

	c.JSON(http.StatusOK, g)
}
