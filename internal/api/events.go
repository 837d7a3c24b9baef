package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"pantry-planner/internal/auth"
	"pantry-planner/internal/metrics"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// issueToken mints a bearer token for the given user ID.
func (s *Server) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	token, err := s.authManager.IssueToken(req.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// streamEvents pushes the caller's change events over SSE until the client
// disconnects or the hub drops the subscription.
func (s *Server) streamEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sub := s.hub.Subscribe(auth.UserID(c))
	defer sub.Close()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("message", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// dailyMetrics reports request totals for the last N days (default 7).
func (s *Server) dailyMetrics(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, fmt.Errorf("invalid days value %q", raw))
			return
		}
		days = parsed
	}

	usage, err := s.metrics.GetDailyUsage(c.Request.Context(), days)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if usage == nil {
		usage = []metrics.DailyUsage{}
	}
	c.JSON(http.StatusOK, usage)
}

// exportUserData writes a full snapshot of the caller's data to the backup
// directory and returns it.
func (s *Server) exportUserData(c *gin.Context) {
	snap, path, err := s.exporter.Export(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": path, "snapshot": snap})
}
