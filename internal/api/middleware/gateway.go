package middleware

import (
	"github.com/gin-gonic/gin"
)

// ClientIDKey is the gin context key holding the caller's identity
const ClientIDKey = "client_id"

// GatewayAuth trusts the X-User-ID header set by an upstream gateway and
// falls back to the client IP for anonymous traffic.
//
// When AUTH_MODE=gateway, the API trusts this header unconditionally.
// This should ONLY be used behind a gateway that strips it from client requests.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(ClientIDKey, "user:"+userID)
		} else {
			c.Set(ClientIDKey, "ip:"+c.ClientIP())
		}
		c.Next()
	}
}

// GetClientID retrieves the identity set by GatewayAuth or NoAuth
func GetClientID(c *gin.Context) (string, bool) {
	id := c.GetString(ClientIDKey)
	return id, id != ""
}
