package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"aitools.app/recommender/core/config"
)

// CORS builds the cross-origin policy. With "*" every origin is accepted and
// echoed back, so credentialed requests keep working.
func CORS(cfg config.CORSConfig) (gin.HandlerFunc, error) {
	corsCfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"X-Data-Fetched-At"},
		AllowCredentials: true,
		AllowWildcard:    true,
		MaxAge:           12 * time.Hour,
	}

	if cfg.AllowAll() {
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cors config: %w", err)
	}
	return cors.New(corsCfg), nil
}
