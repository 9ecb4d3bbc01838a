// Package pricing turns the loosely formatted prices found in listings and
// period rows into integer amounts.
package pricing

import (
	"math"
	"regexp"
	"strings"

	"propsearch/server/internal/catalog"
	"propsearch/server/internal/models"
)

// OnRequest is the resolved price of a listing without a usable amount.
const OnRequest int64 = 0

var amountPattern = regexp.MustCompile(`\d[\d.,]*`)

// ParseAmount keeps only the digits of raw and reads them as an integer, so
// "$5.300" becomes 5300. Text without digits, or too long to fit, is
// OnRequest.
func ParseAmount(raw string) int64 {
	var n int64
	seen := false
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		seen = true
		d := int64(r - '0')
		if n > (math.MaxInt64-d)/10 {
			return OnRequest
		}
		n = n*10 + d
	}
	if !seen {
		return OnRequest
	}
	return n
}

// ExtractFromNote reads the first amount written in a free-text price note
// such as "USD 1.500 por mes" or "Consultar: 1500/month". A trailing one or
// two digit group after a separator is read as cents and dropped.
func ExtractFromNote(note string) int64 {
	m := amountPattern.FindString(note)
	if m == "" {
		return OnRequest
	}
	m = strings.TrimRight(m, ".,")
	if i := strings.LastIndexAny(m, ".,"); i >= 0 {
		if decimals := len(m) - i - 1; decimals == 1 || decimals == 2 {
			m = m[:i]
		}
	}
	return ParseAmount(m)
}

// BasePrice resolves the display price of a listing from its own fields,
// without consulting periods. Rentals without a base price fall back to the
// local-currency annual price (annual rentals only) and then to the amount
// written in the price note.
func BasePrice(p *models.Property, op catalog.Operation) int64 {
	if p.Price > 0 {
		return p.Price
	}
	if !op.IsRental() {
		return OnRequest
	}
	if op == catalog.OperationAnnualRental && p.EsPropertyPriceARS > 0 {
		return p.EsPropertyPriceARS
	}
	return ExtractFromNote(p.PriceNote)
}
