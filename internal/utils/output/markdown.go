package output

import (
	"bytes"
	"io"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/law-makers/pricewatch/pkg/models"
)

// WriteMarkdown renders the HTML report and converts it to GitHub-flavored Markdown
func WriteMarkdown(w io.Writer, resp *models.SearchResponse) error {
	var page bytes.Buffer
	if err := WriteHTML(&page, resp); err != nil {
		return err
	}

	cleaned, err := CleanHTML(page.String())
	if err != nil {
		return err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	mdStr, err := converter.ConvertString(cleaned)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, mdStr+"\n")
	return err
}
