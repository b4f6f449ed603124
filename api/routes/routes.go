package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/concept-graph/api/handlers"
	"github.com/feichai0017/concept-graph/api/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	// 全局中间件
	r.Use(middleware.CORS())

	// API 版本组
	v1 := r.Group("/api/v1")

	// 健康检查
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 学科路由组
	subjects := v1.Group("/subjects")
	{
		subjects.POST("", h.Subject.Create)
		subjects.GET("", h.Subject.List)
		subjects.GET("/:subjectId", h.Subject.Get)
		subjects.DELETE("/:subjectId", h.Subject.Delete)
		subjects.GET("/:subjectId/documents", h.Subject.ListDocuments)
		subjects.GET("/:subjectId/graph", h.Subject.GetGraph)
	}

	// 文档路由组
	docs := v1.Group("/documents")
	{
		docs.POST("/upload", h.Document.Upload)
		docs.GET("/:documentId/status", h.Document.GetStatus)
		docs.DELETE("/:documentId", h.Document.Delete)
	}

	// 概念路由组
	concepts := v1.Group("/concepts")
	{
		concepts.GET("/search", h.Concept.Search)
		concepts.DELETE("/:conceptId", h.Concept.Delete)
	}
}
