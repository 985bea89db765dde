// Package helper writes the API's two error body shapes. Keeping them in
// one place keeps every handler on the same wire contract.
package helper

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SendMessage writes the single-message error body: {"message": "..."}.
func SendMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// SendValidationErrors writes the field map body the API serves for
// rejected input: {"errors": {"title": ["title is required"]}}.
func SendValidationErrors(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
}

func SendBadRequest(c *gin.Context, message string) {
	SendMessage(c, http.StatusBadRequest, message)
}

func SendNotFound(c *gin.Context, message string) {
	SendMessage(c, http.StatusNotFound, message)
}

func SendUnauthorized(c *gin.Context, message string) {
	SendMessage(c, http.StatusUnauthorized, message)
}

func SendInternalError(c *gin.Context, message string) {
	SendMessage(c, http.StatusInternalServerError, message)
}
