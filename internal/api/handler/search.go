package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/pricewatch/internal/engine"
)

// Search returns a handler for POST /api/v1/search.
func Search(s Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, SearchResponse{
				Success: false,
				Error: &ErrorDetail{
					Code:    string(engine.ErrCodeInvalidQuery),
					Message: "request body must be JSON with category and brand",
				},
			})
			return
		}

		resp, err := s.Search(c.Request.Context(), req.Category, req.Brand)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, SearchResponse{Success: true, Data: resp})
	}
}
