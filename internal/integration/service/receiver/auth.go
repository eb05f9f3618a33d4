package receiver

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

var webhookToken string

// ConfigureAuth sets the shared token required on webhook deliveries. An
// empty token disables the check.
func ConfigureAuth(token string) { webhookToken = token }

// AuthMiddleware returns false if unauthorized and writes a 401 response.
// The token is accepted from the X-Webhook-Token header or a token query
// parameter, since StatusCake webhook URLs carry credentials in the query.
func AuthMiddleware(c *gin.Context) bool {
	if webhookToken == "" {
		return true
	}
	supplied := c.GetHeader("X-Webhook-Token")
	if supplied == "" {
		supplied = c.Query("token")
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(webhookToken)) != 1 {
		c.String(http.StatusUnauthorized, "unauthorized")
		c.Abort()
		return false
	}
	return true
}
