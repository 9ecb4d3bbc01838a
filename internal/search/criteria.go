package search

import (
	"strconv"

	"github.com/paulmach/orb"

	"propsearch/server/internal/catalog"
)

// Criteria is a validated, immutable search request. Optional numeric
// filters are nil when the caller did not send a usable value.
type Criteria struct {
	Operation      catalog.Operation
	Region         string
	Type           catalog.PropertyType
	Neighborhoods  []string
	Query          string
	Pax            *int
	PaxOrMore      bool
	Bedrooms       *int
	BedroomsOrMore bool
	MinCoveredArea *float64
	MinPrice       *int64
	MaxPrice       *int64
	Pets           bool
	Pool           bool
	Period         catalog.PeriodSelector
	ExplicitDates  bool
	Bounds         *orb.Bound
	Sort           catalog.SortMode
	Limit          int
	Offset         int
}

// Seasonal reports whether prices come from the period table: a seasonal
// rental restricted to the fixed in-season window.
func (c Criteria) Seasonal() bool {
	return c.Operation == catalog.OperationSeasonalRental && !c.ExplicitDates
}

// HasPriceRange reports whether either price bound was supplied.
func (c Criteria) HasPriceRange() bool {
	return c.MinPrice != nil || c.MaxPrice != nil
}

// Categories returns the category codes required by the operation.
func (c Criteria) Categories() []int {
	return c.Operation.Categories(c.ExplicitDates)
}

// check validates the vocabulary of c. When regions is not nil the region and
// neighborhood names must also be declared in it.
func (c Criteria) check(regions *catalog.Regions) error {
	var fields []FieldError
	if c.Operation.Categories(false) == nil {
		fields = append(fields, FieldError{Field: "operacion", Value: string(c.Operation), Reason: "unknown operation"})
	}
	if c.Type != "" && c.Type.ID() == 0 {
		fields = append(fields, FieldError{Field: "tipo", Value: string(c.Type), Reason: "unknown property type"})
	}
	if _, ok := catalog.ParseSortMode(string(c.Sort)); !ok {
		fields = append(fields, FieldError{Field: "sort", Value: string(c.Sort), Reason: "unknown sort mode"})
	}
	if c.Period != "" && c.Period.Fragments() == nil {
		fields = append(fields, FieldError{Field: "periodo", Value: string(c.Period), Reason: "unknown period"})
	}
	if c.Offset < 0 {
		fields = append(fields, FieldError{Field: "offset", Value: strconv.Itoa(c.Offset), Reason: "must not be negative"})
	}
	if c.Limit < 0 {
		fields = append(fields, FieldError{Field: "limit", Value: strconv.Itoa(c.Limit), Reason: "must not be negative"})
	}
	if regions != nil {
		if c.Region != "" {
			if _, ok := regions.Region(c.Region); !ok {
				fields = append(fields, FieldError{Field: "zona", Value: c.Region, Reason: "unknown region"})
			}
		}
		for _, n := range c.Neighborhoods {
			if _, ok := regions.Neighborhood(n); !ok {
				fields = append(fields, FieldError{Field: "barrios", Value: n, Reason: "unknown neighborhood"})
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
