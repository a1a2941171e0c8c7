package output

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/pricewatch/pkg/models"
	"golang.org/x/net/html"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Page is the view model for the HTML results page
type Page struct {
	// ShowForm renders the search form posting to Action
	ShowForm bool
	Action   string
	Category string
	Brand    string
	Error    string
	Response *models.SearchResponse
}

// RenderPage writes the HTML page for p to w
func RenderPage(w io.Writer, p Page) error {
	if p.Action == "" {
		p.Action = "/search"
	}
	if p.Response != nil {
		if p.Category == "" {
			p.Category = p.Response.Query.Category
		}
		if p.Brand == "" {
			p.Brand = p.Response.Query.Brand
		}
	}
	return pageTemplate.Execute(w, p)
}

// WriteHTML writes a standalone results report without the search form
func WriteHTML(w io.Writer, resp *models.SearchResponse) error {
	return RenderPage(w, Page{Response: resp})
}

// CleanHTML strips scripts, styles and form controls and drops every attribute
// except link targets, leaving markup suitable for conversion.
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, title").Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			if node.Data == "a" && (attr.Key == "href" || attr.Key == "title") {
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
