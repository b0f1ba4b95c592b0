package handler

import (
	"clearpath-signals/constant"
	"clearpath-signals/dto"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"mime/multipart"
	"net/http"
)

// UploadVideos accepts one video per approach and starts a simulation.
func (h *Handler) UploadVideos(c *gin.Context) {
	if h.maxUploadSize > 0 {
		// four videos plus multipart overhead
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 4*h.maxUploadSize+(1<<20))
	}
	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, bindError(fmt.Errorf("invalid multipart form: %w", err)))
		return
	}

	files := make(map[constant.Direction]*multipart.FileHeader, len(constant.Directions))
	for _, dir := range constant.Directions {
		if fhs := form.File[dir.String()]; len(fhs) > 0 {
			files[dir] = fhs[0]
		}
	}

	var owner *uuid.UUID
	if user := currentUser(c); user != nil {
		owner = &user.ID
	}

	session, err := h.upload.Upload(c.Request.Context(), files, owner)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		Success:   true,
		Message:   "Videos uploaded successfully. Processing started.",
		SessionID: session.SessionID,
		VideoPaths: map[string]string{
			constant.DirectionNorth.String(): session.Videos.North,
			constant.DirectionSouth.String(): session.Videos.South,
			constant.DirectionEast.String():  session.Videos.East,
			constant.DirectionWest.String():  session.Videos.West,
		},
	})
}
