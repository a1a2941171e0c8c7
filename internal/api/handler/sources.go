package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/pricewatch/pkg/models"
)

// SourceInfo describes one configured marketplace
type SourceInfo struct {
	Source       models.Source `json:"source"`
	DisplayName  string        `json:"display_name"`
	URLTemplate  string        `json:"url_template"`
	WaitSelector string        `json:"wait_selector"`
	Wait         string        `json:"wait"`
	BrandFilter  bool          `json:"brand_filter"`
}

// DescribeSources summarizes catalog in display order
func DescribeSources(catalog []models.ExtractionRule) []SourceInfo {
	infos := make([]SourceInfo, len(catalog))
	for i, r := range catalog {
		infos[i] = SourceInfo{
			Source:       r.Source,
			DisplayName:  r.DisplayName,
			URLTemplate:  r.URLTemplate,
			WaitSelector: r.WaitSelector,
			Wait:         r.WaitTimeout.String(),
			BrandFilter:  r.BrandFilter,
		}
	}
	return infos
}

// Sources returns a handler for GET /api/v1/sources.
func Sources(catalog []models.ExtractionRule) gin.HandlerFunc {
	infos := DescribeSources(catalog)
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sources": infos})
	}
}
