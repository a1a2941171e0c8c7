// Package api exposes search over HTTP: a JSON API and the HTML form pages.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/pricewatch/internal/api/handler"
	"github.com/law-makers/pricewatch/internal/api/middleware"
	"github.com/law-makers/pricewatch/internal/app"
	"github.com/law-makers/pricewatch/internal/ratelimit"
	"github.com/rs/cors"
)

// NewRouter creates the HTTP handler for a.
//
// Middleware chain:
//
//	Global:  CORS → Recovery → RequestID → Logger
//	Search:  RateLimit
//
// Health and sources stay outside the rate limit so probes always work.
func NewRouter(a *app.Application) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	limiter := ratelimit.NewKeyedLimiter(a.Config.APIRateLimitRPS, a.Config.APIRateLimitBurst)
	limited := middleware.RateLimit(limiter)

	r.GET("/", handler.Index())
	r.POST("/search", limited, handler.SearchPage(a))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(app.Version, a.Renderer.Name(), a.Cache, a.StartTime()))
	v1.GET("/sources", handler.Sources(a.Catalog))
	v1.POST("/search", limited, handler.Search(a))

	origins := a.Config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	return c.Handler(r)
}
