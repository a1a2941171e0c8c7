package ui

import "github.com/law-makers/pricewatch/pkg/models"

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

func Dim(s string) string {
	return ColorDim + s + ColorReset
}

// Status renders a source status in its traffic-light color
func Status(st models.Status) string {
	switch st {
	case models.StatusOK:
		return Success(string(st))
	case models.StatusNoMatches:
		return ColorYellow + string(st) + ColorReset
	default:
		return Error(string(st))
	}
}
