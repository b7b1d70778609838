package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qrcode-api/internal/auth"
	"qrcode-api/internal/pagination"
	"qrcode-api/internal/service"
)

func authStatus(kind auth.Kind) int {
	switch kind {
	case auth.KindUnauthenticated, auth.KindForbidden:
		return http.StatusForbidden
	case auth.KindNotFound:
		return http.StatusNotFound
	case auth.KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError maps domain errors to a status and a client-safe message.
// Unrecognised errors are logged and reported as a generic 500.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	var (
		authErr       *auth.Error
		validationErr *service.ValidationError
	)
	switch {
	case errors.As(err, &authErr):
		c.AbortWithStatusJSON(authStatus(authErr.Kind), gin.H{"error": authErr.Message})
	case errors.Is(err, pagination.ErrInvalidParams):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrQRCodeNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}
