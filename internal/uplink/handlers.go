package uplink

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"voidnet/internal/compose"
	"voidnet/internal/observability"
)

const defaultLogTail = 100

type deployRequest struct {
	CapsuleID   int64  `json:"capsule_id" binding:"required"`
	ComposeFile string `json:"compose_file" binding:"required"`
}

type stopRequest struct {
	CapsuleID int64 `json:"capsule_id" binding:"required"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":           "Void Uplink",
		"version":        s.Version,
		"description":    "Satellite agent for Void distributed infrastructure",
		"satellite_name": s.Name,
		"endpoints": gin.H{
			"POST /deploy":    "Deploy a capsule (compose up)",
			"POST /stop":      "Stop a capsule's containers",
			"GET /logs":       "Fetch capsule logs",
			"GET /containers": "List containers on this satellite",
			"GET /health":     "Health check",
		},
	})
}

func (s *Server) handleDeploy(c *gin.Context) {
	var req deployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	res := s.Executor.Execute(c.Request.Context(), req.ComposeFile, compose.ActionUp, ProjectName(req.CapsuleID))
	observability.RecordDeployment(s.Name, res.Success)
	if !res.Success {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": "Deployment failed: " + res.Error,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"capsule_id": req.CapsuleID,
		"message":    "Capsule deployed successfully",
		"output":     res.Output,
	})
}

// handleStop resolves the capsule to its live containers by the naming
// contract and stops each one. Stopping by discovery rather than by a
// stored compose file survives a lost descriptor and never goes stale.
func (s *Server) handleStop(c *gin.Context) {
	var req stopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	matched, err := s.capsuleContainers(c.Request.Context(), req.CapsuleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Stop failed: " + err.Error()})
		return
	}
	if len(matched) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"detail": fmt.Sprintf("No containers found for capsule %d", req.CapsuleID),
		})
		return
	}

	var failures []string
	for _, ct := range matched {
		if err := s.Runtime.StopContainer(c.Request.Context(), ct.ID); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", ct.Name, err))
		}
	}
	if len(failures) > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": fmt.Sprintf("Stop failed for %d of %d containers: %v", len(failures), len(matched), failures),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"capsule_id": req.CapsuleID,
		"message":    fmt.Sprintf("Stopped %d containers", len(matched)),
	})
}

// handleLogs returns per-container logs for a capsule. A container whose
// logs cannot be fetched gets an error string as its value — one bad
// container never aborts the whole response.
func (s *Server) handleLogs(c *gin.Context) {
	capsuleID, err := strconv.ParseInt(c.Query("capsule_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "capsule_id is required"})
		return
	}
	tail := defaultLogTail
	if raw := c.Query("tail"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			tail = parsed
		}
	}

	matched, err := s.capsuleContainers(c.Request.Context(), capsuleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to get logs: " + err.Error()})
		return
	}
	if len(matched) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"detail": fmt.Sprintf("No containers found for capsule %d", capsuleID),
		})
		return
	}

	logs := make(map[string]string, len(matched))
	for _, ct := range matched {
		text, err := s.Runtime.ContainerLogs(c.Request.Context(), ct.ID, tail)
		if err != nil {
			logs[ct.Name] = "Error: " + err.Error()
			continue
		}
		logs[ct.Name] = text
	}
	c.JSON(http.StatusOK, gin.H{"capsule_id": capsuleID, "logs": logs})
}

func (s *Server) handleContainers(c *gin.Context) {
	containers, err := s.Runtime.ListContainers(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list containers: " + err.Error()})
		return
	}
	if containers == nil {
		containers = []Container{}
	}
	c.JSON(http.StatusOK, gin.H{"containers": containers})
}

// handleHealth always answers. A runtime that cannot be queried makes the
// satellite degraded, not unreachable.
func (s *Server) handleHealth(c *gin.Context) {
	now := time.Now().UTC().Format(time.RFC3339)
	running, err := s.Runtime.ListContainers(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":         "degraded",
			"satellite_name": s.Name,
			"error":          err.Error(),
			"timestamp":      now,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"satellite_name":     s.Name,
		"running_containers": len(running),
		"timestamp":          now,
	})
}

func (s *Server) capsuleContainers(ctx context.Context, capsuleID int64) ([]Container, error) {
	containers, err := s.Runtime.ListContainers(ctx, true)
	if err != nil {
		return nil, err
	}
	var matched []Container
	for _, ct := range containers {
		if BelongsToCapsule(ct.Name, capsuleID) {
			matched = append(matched, ct)
		}
	}
	return matched, nil
}
