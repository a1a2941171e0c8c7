package output

import (
	"encoding/json"
	"io"

	"github.com/law-makers/pricewatch/pkg/models"
)

// WriteJSON writes resp as indented JSON
func WriteJSON(w io.Writer, resp *models.SearchResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
