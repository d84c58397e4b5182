package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		visitor := c.GetString(VisitorIDKey)
		if len(visitor) > 8 {
			visitor = visitor[:8]
		}
		log.Printf("%s %s %d %s ip=%s visitor=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency, c.ClientIP(), visitor)
	}
}
