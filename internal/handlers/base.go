package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// message writes the standard {message} body.
func message(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"message": msg})
}

// internalError logs the unexpected store/runtime failure and answers 500.
// Nothing is retried; the caller only sees the generic message.
func internalError(c *gin.Context, err error) {
	log.Println("internal error:", err)
	message(c, http.StatusInternalServerError, "Something went wrong!")
}
