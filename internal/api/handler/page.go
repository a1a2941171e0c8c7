package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/pricewatch/internal/utils/output"
	"github.com/rs/zerolog/log"
)

// Index returns a handler for GET /, the empty search form.
func Index() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderPage(c, http.StatusOK, output.Page{ShowForm: true})
	}
}

// SearchPage returns a handler for POST /search. It reads the category and
// brand_name form fields and renders the results under the form. A blank
// field renders the form again without searching.
func SearchPage(s Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := strings.TrimSpace(c.PostForm("category"))
		brand := strings.TrimSpace(c.PostForm("brand_name"))

		page := output.Page{ShowForm: true, Category: category, Brand: brand}
		if category == "" || brand == "" {
			renderPage(c, http.StatusOK, page)
			return
		}

		resp, err := s.Search(c.Request.Context(), category, brand)
		if err != nil {
			log.Error().Err(err).Msg("Search page failed")
			page.Error = "Search failed, please try again."
			renderPage(c, http.StatusInternalServerError, page)
			return
		}

		page.Response = resp
		renderPage(c, http.StatusOK, page)
	}
}

func renderPage(c *gin.Context, status int, page output.Page) {
	var buf bytes.Buffer
	if err := output.RenderPage(&buf, page); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
