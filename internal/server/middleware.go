package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method, path := c.Request.Method, c.Request.URL.Path
		logger.Debug("request", "method", method, "path", path)

		c.Next()

		elapsed := float64(time.Since(start).Microseconds()) / 1000
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			logger.Error("response", "method", method, "path", path, "status", status, "ms", elapsed)
			return
		}
		logger.Info("response", "method", method, "path", path, "status", status, "ms", elapsed)
	}
}

// cors allows the listed origins, or any origin when the list contains "*".
func cors(origins []string) gin.HandlerFunc {
	allowAll := slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || slices.Contains(origins, origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
