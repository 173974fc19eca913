package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotbook/service-booking/pkg/domain"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// BadRequest writes a 400 response with a message body.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// Error maps a domain error to its HTTP status and writes a message body.
// Unclassified errors become a generic 500 so internal detail stays out of
// responses.
func Error(c *gin.Context, err error) {
	var domErr *domain.DomainError
	if errors.As(err, &domErr) {
		switch {
		case errors.Is(domErr.Err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": domErr.Message})
		case errors.Is(domErr.Err, domain.ErrValidation),
			errors.Is(domErr.Err, domain.ErrConflict),
			errors.Is(domErr.Err, domain.ErrInvalidState),
			errors.Is(domErr.Err, domain.ErrSignature):
			c.JSON(http.StatusBadRequest, gin.H{"message": domErr.Message})
		case errors.Is(domErr.Err, domain.ErrGateway):
			c.JSON(http.StatusInternalServerError, gin.H{"message": domErr.Message})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}
