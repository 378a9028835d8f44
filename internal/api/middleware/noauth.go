package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoAuth identifies every caller by IP, for AUTH_MODE=none
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ClientIDKey, "ip:"+c.ClientIP())
		c.Next()
	}
}
