// Package server exposes the session controller to a browser front end.
package server

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aryannaik/sustainify/internal/logging"
	"github.com/aryannaik/sustainify/internal/session"
)

// NewRouter wires the API routes and, when staticDir exists, the front end.
func NewRouter(ctrl *session.Controller, staticDir string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := NewHandlers(ctrl, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(logger))

	api := r.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/categories", h.ListCategories)

		api.POST("/view/query", h.SetQuery)
		api.POST("/view/category", h.SetCategory)
		api.POST("/view/sort", h.SetSort)
		api.POST("/view/page", h.SetPage)
		api.POST("/view/bookmarks", h.ToggleBookmarkOnly)

		api.GET("/bookmarks", h.ListBookmarks)
		api.POST("/bookmarks/:id", h.ToggleBookmark)

		api.GET("/compare", h.ListCompare)
		api.POST("/compare/:id", h.ToggleCompare)

		api.POST("/contributions", h.AddContribution)
		api.DELETE("/contributions/:id", h.DeleteContribution)

		api.GET("/export.xlsx", h.ExportXLSX)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(staticDir))))
	}

	return r
}

// New returns the HTTP server listening on port.
func New(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}
}
