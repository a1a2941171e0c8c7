package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/law-makers/pricewatch/pkg/models"
)

var csvHeader = []string{"source", "name", "price", "display_price", "status"}

// WriteCSV writes one row per listing. A source without listings gets a
// single row carrying its status so failures stay visible.
func WriteCSV(w io.Writer, resp *models.SearchResponse) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, res := range resp.Results {
		if len(res.Listings) == 0 {
			if err := writer.Write([]string{string(res.Source), "", "", "", string(res.Status)}); err != nil {
				return err
			}
			continue
		}
		for _, l := range res.Listings {
			row := []string{string(l.Source), l.Name, strconv.Itoa(l.Price), l.DisplayPrice, string(res.Status)}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
