package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/concept-graph/internal/repository"
	"github.com/feichai0017/concept-graph/internal/service/ingestion"
	"github.com/feichai0017/concept-graph/internal/service/subject"
	"github.com/feichai0017/concept-graph/pkg/logger"
)

type Handlers struct {
	Document *DocumentHandler
	Subject  *SubjectHandler
	Concept  *ConceptHandler
}

func NewHandlers(
	ingestService ingestion.Service,
	subjectService subject.Service,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(ingestService, logger),
		Subject:  NewSubjectHandler(subjectService, logger),
		Concept:  NewConceptHandler(subjectService, logger),
	}
}

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleError 统一错误处理
func handleError(c *gin.Context, log logger.Logger, status int, message string, err error) {
	log.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(status, response)
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
