// Package price turns freeform marketplace price text into integer amounts.
package price

import (
	"fmt"
	"math"

	"github.com/law-makers/pricewatch/internal/engine"
)

// Normalize keeps only the ASCII digits of text and parses them as an integer.
// Separators, currency symbols and decimal points are all discarded, so
// "₹45,999" and "45999" are equal while "12000.00" becomes 1200000.
func Normalize(text string) (int, error) {
	n := 0
	digits := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < '0' || c > '9' {
			continue
		}
		d := int(c - '0')
		if n > (math.MaxInt-d)/10 {
			return 0, fmt.Errorf("%w: %q overflows", engine.ErrMalformedPrice, text)
		}
		n = n*10 + d
		digits++
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: no digits in %q", engine.ErrMalformedPrice, text)
	}
	return n, nil
}

// Band is an inclusive price range
type Band struct {
	Min int
	Max int
}

// DefaultBand is the range a listing must fall in to be shown
var DefaultBand = Band{Min: 10000, Max: 80000}

// Contains reports whether p lies within the band, bounds included
func (b Band) Contains(p int) bool {
	return p >= b.Min && p <= b.Max
}

func (b Band) String() string {
	return fmt.Sprintf("[%d, %d]", b.Min, b.Max)
}
