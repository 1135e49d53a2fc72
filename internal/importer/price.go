package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	priceJunk  = regexp.MustCompile(`[^\d.,]`)
	stockDigit = regexp.MustCompile(`\d+`)
)

// ParsePrice reads a human-formatted price such as "1 234,56 ₽". Everything
// but digits, dots and commas is dropped, commas become dots, and when
// several dots remain all but the last are thousands separators. A lone dot
// followed by exactly three digits ("12.990") is a thousands separator too.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	s := strings.TrimRight(priceJunk.ReplaceAllString(raw, ""), ".")
	if !strings.Contains(s, ",") && strings.Count(s, ".") == 1 {
		if dot := strings.IndexByte(s, '.'); dot > 0 && len(s)-dot-1 == 3 {
			s = s[:dot] + s[dot+1:]
		}
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		last := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}
	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// inStockQuantity stands in for "в наличии" when the feed gives no number.
const inStockQuantity = 10

// ParseStock turns an availability cell into a stock quantity.
func ParseStock(raw string) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	if m := stockDigit.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	if strings.Contains(s, "нет") || strings.Contains(s, "отсутств") || s == "false" || s == "no" {
		return 0
	}
	if strings.Contains(s, "наличи") || s == "да" || s == "true" || s == "yes" || strings.Contains(s, "in stock") {
		return inStockQuantity
	}
	return 0
}
