package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediavault/backend/internal/services"
)

// writeServiceError maps the service error taxonomy to HTTP responses.
func writeServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, services.ErrUnsupportedMediaType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "file"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, services.ErrFileMissing):
		log.Printf("Storage drift: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored file is missing"})
	case errors.Is(err, services.ErrStorageWrite):
		log.Printf("Storage error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage operation failed"})
	default:
		log.Printf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
