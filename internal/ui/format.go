package ui

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// priceScale converts the smallest currency unit into whole units.
	priceScale = 100

	fallbackLocale = "en-US"
)

// newPrinter returns a printer for locale, falling back to en-US when the
// tag does not parse.
func newPrinter(locale string) *message.Printer {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.MustParse(fallbackLocale)
	}
	return message.NewPrinter(tag)
}

// formatPrice renders a price given in the smallest currency unit with the
// printer's grouping and decimal separators and two fraction digits.
func formatPrice(p *message.Printer, price int64) string {
	return p.Sprint(number.Decimal(float64(price)/priceScale, number.Scale(2)))
}

var titleCaser = cases.Title(language.English)

// policyLabel renders a reconnect policy state such as
// "awaiting_auto_reconnect" as "Awaiting Auto Reconnect".
func policyLabel(policy string) string {
	return titleCaser.String(strings.ReplaceAll(policy, "_", " "))
}

// truncate shortens s to at most limit runes, marking the cut with an
// ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}
