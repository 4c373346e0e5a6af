// Package format renders values for display.
package format

import (
	"math"
	"strconv"

	"github.com/iwvelando/anticrisis-view/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is shown where a section has no value for a field.
const Placeholder = "—"

// ConfidencePercent converts a confidence in [0,1] to a whole percentage
// (0.82 -> 82). Values are rounded half away from zero.
func ConfidencePercent(confidence float64) int {
	return int(math.Round(confidence * constants.PercentageMultiplier))
}

// Percent renders a confidence for display (e.g. "82%"). Exports keep the
// raw value instead.
func Percent(confidence float64) string {
	return strconv.Itoa(ConfidencePercent(confidence)) + "%"
}

// Number renders v with locale-specific grouping and at most two fraction
// digits (e.g. "1,234.5" in English).
func Number(v float64, tag language.Tag) string {
	p := message.NewPrinter(tag)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Optional renders v with Number when ok, otherwise the placeholder.
func Optional(v float64, ok bool, tag language.Tag) string {
	if !ok {
		return Placeholder
	}
	return Number(v, tag)
}
