package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires the invocation surface: a health check carrying
// component stats (grounded on the teacher's cmd/tarsy/main.go /health
// handler), the agent listing, the single "run a query" entry point, and
// the live event feed, whose handler lives in ws.go.
func (a *app) registerRoutes(engine *gin.Engine) {
	engine.GET("/health", a.handleHealth)
	engine.GET("/agents", a.handleListAgents)
	engine.POST("/sessions", a.handleRunSession)
	engine.GET("/ws", a.handleWebSocket)
}

func (a *app) handleHealth(c *gin.Context) {
	stats := a.bb.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"blackboard": gin.H{
			"tasks":       stats.TaskCount,
			"artifacts":   stats.ArtifactCount,
			"notes":       stats.NoteCount,
			"subscribers": stats.Subscribers,
		},
		"agents":   len(a.registry.List()),
		"warnings": a.registry.Warnings(),
	})
}

func (a *app) handleListAgents(c *gin.Context) {
	descriptors := a.registry.List()
	out := make([]gin.H, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, gin.H{
			"name":        d.Name,
			"description": d.Description,
			"keywords":    d.Keywords,
			"tools":       d.Tools,
			"scope":       d.Scope,
		})
	}
	c.JSON(http.StatusOK, gin.H{"agents": out})
}

type runSessionRequest struct {
	TaskID string `json:"taskId"`
	Query  string `json:"query" binding:"required"`
}

func (a *app) handleRunSession(c *gin.Context) {
	var req runSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), a.schedulerOptions().SessionDeadline+time.Minute)
	defer cancel()

	result, err := a.runSession(ctx, req.TaskID, req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
