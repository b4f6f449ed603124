package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/concept-graph/internal/service/subject"
	"github.com/feichai0017/concept-graph/pkg/logger"
)

type ConceptHandler struct {
	service subject.Service
	logger  logger.Logger
}

func NewConceptHandler(service subject.Service, logger logger.Logger) *ConceptHandler {
	return &ConceptHandler{
		service: service,
		logger:  logger,
	}
}

// Delete 删除单个概念
func (h *ConceptHandler) Delete(c *gin.Context) {
	conceptID := c.Param("conceptId")

	if err := h.service.DeleteConcept(c.Request.Context(), conceptID); err != nil {
		handleError(c, h.logger, statusFor(err), "Failed to delete concept", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Concept deleted",
		"conceptId": conceptID,
	})
}

// Search 按词条搜索学科内的概念
func (h *ConceptHandler) Search(c *gin.Context) {
	subjectID := c.Query("subjectId")
	term := c.Query("term")
	if subjectID == "" || term == "" {
		handleError(c, h.logger, http.StatusBadRequest, "subjectId and term are required", nil)
		return
	}

	concepts, err := h.service.SearchConcepts(c.Request.Context(), subjectID, term)
	if err != nil {
		handleError(c, h.logger, statusFor(err), "Failed to search concepts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subjectId": subjectID,
		"term":      term,
		"concepts":  concepts,
	})
}
