package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DefaultAllowedOrigins covers the local web and Flutter dev servers.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8080",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:8080",
}

// CORS allows the given origins; nil or empty falls back to DefaultAllowedOrigins and
// a single "*" allows any origin without credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", headerUserID, headerRequestID, headerTraceID},
		ExposeHeaders:    []string{headerRequestID, headerTraceID},
		AllowCredentials: true,
	}
	switch {
	case len(allowedOrigins) == 1 && allowedOrigins[0] == "*":
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	case len(allowedOrigins) == 0:
		cfg.AllowOrigins = DefaultAllowedOrigins
	default:
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}
