package handler

import (
	"clearpath-signals/dto"
	"clearpath-signals/pkg/auth"
	"clearpath-signals/service"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"net/http"
	"strings"
)

// writeError maps service errors onto HTTP statuses. Anything unknown is a 500
// and its detail stays in the log.
func writeError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		status, message = http.StatusNotFound, "Simulation not found"
	case errors.Is(err, service.ErrSessionClosed):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrEmailTaken):
		status, message = http.StatusConflict, "Email already registered"
	case errors.Is(err, service.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, auth.ErrExpiredToken):
		status, message = http.StatusUnauthorized, "Token expired. Please login again."
	case errors.Is(err, auth.ErrInvalidToken):
		status, message = http.StatusUnauthorized, "Invalid token. Please login again."
	case errors.Is(err, service.ErrUserNotFound):
		status, message = http.StatusUnauthorized, "User no longer exists"
	}

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Success: false, Message: message})
}

// bindError turns a request decoding failure into a validation error naming
// the offending fields.
func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", service.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", service.ErrValidation, strings.Join(msgs, "; "))
}
