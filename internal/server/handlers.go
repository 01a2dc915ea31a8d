package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type themesRequest struct {
	Themes []string `json:"themes"`
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "componentbridge host simulator",
		"environment": s.config.Server.Environment,
		"endpoints":   []string{"/component", "/themes", "/items", "/health", "/metrics"},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"connections": s.handler.Connections(),
		"uptime":      time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) broadcastThemes(c *gin.Context) {
	var req themesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delivered := s.handler.BroadcastThemes(req.Themes)
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}

func (s *Server) listItems(c *gin.Context) {
	var contentTypes []string
	if ct := c.Query("content_type"); ct != "" {
		contentTypes = append(contentTypes, ct)
	}
	c.JSON(http.StatusOK, gin.H{"items": s.store.List(contentTypes...)})
}

func (s *Server) getItem(c *gin.Context) {
	item, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (s *Server) metricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.Snapshot())
}
