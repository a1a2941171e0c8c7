// Package handler holds the HTTP handlers for the search API and HTML pages.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/pricewatch/internal/engine"
	"github.com/law-makers/pricewatch/internal/engine/aggregate"
	"github.com/law-makers/pricewatch/pkg/models"
	"github.com/rs/zerolog/log"
)

// Searcher runs a price search
type Searcher interface {
	Search(ctx context.Context, category, brand string, opts ...aggregate.Option) (*models.SearchResponse, error)
}

// ErrorDetail is the structured error in API responses
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// SearchRequest is the body of POST /api/v1/search
type SearchRequest struct {
	Category string `json:"category"`
	Brand    string `json:"brand"`
}

// SearchResponse wraps a search result or error
type SearchResponse struct {
	Success bool                   `json:"success"`
	Data    *models.SearchResponse `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

// respondError maps err to a status code and an ErrorDetail
func respondError(c *gin.Context, err error) {
	code := engine.CodeOf(err)
	status := http.StatusInternalServerError
	if code == engine.ErrCodeInvalidQuery {
		status = http.StatusBadRequest
	}

	detail := &ErrorDetail{Code: string(code), Message: err.Error()}
	var engineErr *engine.EngineError
	if errors.As(err, &engineErr) {
		detail.Message = engineErr.Message
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}

	c.JSON(status, SearchResponse{Success: false, Error: detail})
}
