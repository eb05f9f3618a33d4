package middleware

import (
	"github.com/gin-gonic/gin"
)

// Authentication is a placeholder global middleware. It currently allows all
// requests; the webhook route carries its own token check.
func Authentication(c *gin.Context) {
	c.Next()
}
