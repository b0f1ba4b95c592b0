package handler

import (
	"clearpath-signals/dto"
	"fmt"
	"github.com/gin-gonic/gin"
	"net/http"
	"strconv"
)

func (h *Handler) logFilter(c *gin.Context) (dto.LogQuery, dto.LogFilter, bool) {
	var q dto.LogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, bindError(err))
		return q, dto.LogFilter{}, false
	}
	filter, err := q.Filter(currentUser(c).ID)
	if err != nil {
		writeError(c, bindError(err))
		return q, dto.LogFilter{}, false
	}
	return q, filter, true
}

func (h *Handler) ListLogs(c *gin.Context) {
	q, filter, ok := h.logFilter(c)
	if !ok {
		return
	}
	resp, err := h.logs.List(c.Request.Context(), filter, q.Page, q.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) LogStats(c *gin.Context) {
	_, filter, ok := h.logFilter(c)
	if !ok {
		return
	}
	resp, err := h.logs.Stats(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) LogSessions(c *gin.Context) {
	sessions, err := h.logs.Sessions(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionsResponse{Success: true, Sessions: sessions})
}

// CleanupLogs deletes the caller's logs older than ?days= (30 by default).
func (h *Handler) CleanupLogs(c *gin.Context) {
	days := dto.DefaultLogRetention
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, bindError(fmt.Errorf("days must be an integer")))
			return
		}
		days = n
	}

	deleted, err := h.logs.Cleanup(c.Request.Context(), currentUser(c).ID, days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CleanupResponse{
		Success:      true,
		DeletedCount: deleted,
		Message:      fmt.Sprintf("Deleted %d logs older than %d days", deleted, days),
	})
}
