// Package catalog declares the closed vocabulary shared with search callers:
// operations, category/type/status codes, period selectors, sort modes,
// regions and neighborhoods. Every value a caller can send is declared here
// once and validated at the boundary.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Operation is the transaction type a listing is offered under.
type Operation string

const (
	OperationSale           Operation = "venta"
	OperationSeasonalRental Operation = "alquiler_temporal"
	OperationAnnualRental   Operation = "alquiler_anual"
)

// Category codes as stored in Property.CategoryIDs.
const (
	CategorySale            = 1
	CategorySeasonal        = 2
	CategorySeasonalPeak    = 3
	CategoryAnnual          = 4
	CategoryAnnualFurnished = 5
)

// StatusActive is the lifecycle code of a listing that should be searchable.
// A property with no status codes at all is treated as active too.
const StatusActive = 2

// PeriodAvailable is the only period status that participates in search.
const PeriodAvailable = "Disponible"

// StartingFromLabel is shown instead of a period name when the price is the
// cheapest of all the periods of a property.
const StartingFromLabel = "Desde"

var operationAliases = map[string]Operation{
	"venta":             OperationSale,
	"sale":              OperationSale,
	"alquiler_temporal": OperationSeasonalRental,
	"seasonal_rental":   OperationSeasonalRental,
	"seasonal-rental":   OperationSeasonalRental,
	"alquiler_anual":    OperationAnnualRental,
	"annual_rental":     OperationAnnualRental,
	"annual-rental":     OperationAnnualRental,
}

// ParseOperation maps a caller value to its Operation.
func ParseOperation(s string) (Operation, bool) {
	op, ok := operationAliases[Key(s)]
	return op, ok
}

// Operations lists the canonical operation values.
func Operations() []Operation {
	return []Operation{OperationSale, OperationSeasonalRental, OperationAnnualRental}
}

// IsRental reports whether the operation is one of the rentals.
func (o Operation) IsRental() bool {
	return o == OperationSeasonalRental || o == OperationAnnualRental
}

// Categories returns the category codes a property must carry (any of) to be
// offered under the operation. Seasonal rentals restricted to the fixed
// in-season window use the peak category; explicit date searches use the
// general seasonal category.
func (o Operation) Categories(explicitDates bool) []int {
	switch o {
	case OperationSale:
		return []int{CategorySale}
	case OperationSeasonalRental:
		if explicitDates {
			return []int{CategorySeasonal}
		}
		return []int{CategorySeasonalPeak}
	case OperationAnnualRental:
		return []int{CategoryAnnual, CategoryAnnualFurnished}
	default:
		return nil
	}
}

// PropertyType is the kind of building or land of a listing.
type PropertyType string

const (
	TypeHouse     PropertyType = "casa"
	TypeApartment PropertyType = "departamento"
	TypeLot       PropertyType = "lote"
	TypeDuplex    PropertyType = "duplex"
	TypePH        PropertyType = "ph"
	TypeStore     PropertyType = "local"
)

var typeIDs = map[PropertyType]int{
	TypeHouse:     1,
	TypeApartment: 2,
	TypeLot:       3,
	TypeDuplex:    4,
	TypePH:        5,
	TypeStore:     6,
}

// LotTypeID is the type code of bare land parcels, for which structural
// filters (bedrooms, capacity, covered area) do not apply.
var LotTypeID = typeIDs[TypeLot]

// ParsePropertyType maps a caller value to its PropertyType.
func ParsePropertyType(s string) (PropertyType, bool) {
	t := PropertyType(Key(s))
	_, ok := typeIDs[t]
	return t, ok
}

// ID returns the type code stored in Property.TypeIDs.
func (t PropertyType) ID() int {
	return typeIDs[t]
}

// PropertyTypes lists the known property types ordered by code.
func PropertyTypes() []PropertyType {
	return []PropertyType{TypeHouse, TypeApartment, TypeLot, TypeDuplex, TypePH, TypeStore}
}

// SortMode selects the ordering of search results.
type SortMode string

const (
	SortDefault   SortMode = "default"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
)

// ParseSortMode maps a caller value to a SortMode. An empty value is the
// default ordering.
func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(Key(s)) {
	case "", SortDefault:
		return SortDefault, true
	case SortPriceAsc:
		return SortPriceAsc, true
	case SortPriceDesc:
		return SortPriceDesc, true
	}
	return "", false
}

// SortModes lists the accepted sort values.
func SortModes() []SortMode {
	return []SortMode{SortDefault, SortPriceAsc, SortPriceDesc}
}

// IsAvailable reports whether a period status means the period can be offered.
func IsAvailable(status string) bool {
	return Key(status) == Key(PeriodAvailable)
}

// Fold returns s case-folded for case-insensitive comparisons.
func Fold(s string) string {
	// a Caser keeps state between calls and cannot be shared across requests
	return cases.Fold().String(s)
}

// Key normalizes a caller value for lookups: trimmed, case-folded and with
// diacritics removed, so "Cariló", "carilo" and " CARILO " are the same key.
func Key(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return Fold(out)
}
