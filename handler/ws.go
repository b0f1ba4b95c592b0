package handler

import (
	"clearpath-signals/pkg/broadcast"
	"github.com/gin-gonic/gin"
)

// Subscribe streams broadcast events over a websocket. Without ?session_id the
// client receives every session's events.
func (h *Handler) Subscribe(c *gin.Context) {
	broadcast.ServeWS(h.hub, c.Writer, c.Request, c.Query("session_id"))
}
