package handler

import (
	"clearpath-signals/dto"
	"github.com/gin-gonic/gin"
	"net/http"
)

func (h *Handler) Status(c *gin.Context) {
	session, err := h.simulation.Latest(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, dto.StatusResponse{Status: "idle", Message: "No active simulation"})
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{
		Status:       string(session.Status),
		SessionID:    session.SessionID,
		CurrentState: &session.CurrentState,
		StartedAt:    &session.StartedAt,
	})
}

func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.simulation.Get(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) SessionAlerts(c *gin.Context) {
	alerts, err := h.simulation.Alerts(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// Update is the CV service callback carrying the latest counts and signal state.
func (h *Handler) Update(c *gin.Context) {
	var req dto.UpdateMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	if err := h.ingest.Update(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *Handler) Alert(c *gin.Context) {
	var req dto.AlertMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	if _, err := h.ingest.Alert(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *Handler) Complete(c *gin.Context) {
	var req dto.CompleteMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	if err := h.ingest.Complete(c.Request.Context(), req.SessionID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
