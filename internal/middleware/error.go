package middleware

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/config"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Recovery catches panics from handlers and returns a JSON 500. The panic
// detail is only included outside production.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Error: %v", err)
				msg := "Internal Server Error"
				if !config.IsProduction() {
					msg = fmt.Sprintf("panic: %v", err)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
			}
		}()

		c.Next()
	}
}
