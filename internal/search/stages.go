package search

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/paulmach/orb"

	"propsearch/server/internal/catalog"
	"propsearch/server/internal/models"
	"propsearch/server/internal/periods"
	"propsearch/server/internal/pricing"
)

// Stages never modify their input; a stage with nothing to filter returns it
// as is.

func keep(props []models.Property, pred func(*models.Property) bool) []models.Property {
	out := make([]models.Property, 0, len(props))
	for i := range props {
		if pred(&props[i]) {
			out = append(out, props[i])
		}
	}
	return out
}

func filterStatus(props []models.Property) []models.Property {
	return keep(props, func(p *models.Property) bool {
		return p.IsActive(catalog.StatusActive)
	})
}

func filterCategory(props []models.Property, c Criteria) []models.Property {
	categories := c.Categories()
	return keep(props, func(p *models.Property) bool {
		return p.HasAnyCategory(categories...)
	})
}

// filterStructural applies bedrooms, capacity and covered area. Land parcels
// have none of these, so lots always pass.
func filterStructural(props []models.Property, c Criteria) []models.Property {
	if c.Type == catalog.TypeLot || (c.Bedrooms == nil && c.Pax == nil && c.MinCoveredArea == nil) {
		return props
	}
	return keep(props, func(p *models.Property) bool {
		if p.HasType(catalog.LotTypeID) {
			return true
		}
		if c.Bedrooms != nil && !atLeast(p.Bedrooms, *c.Bedrooms, c.BedroomsOrMore) {
			return false
		}
		if c.Pax != nil && !atLeast(p.Pax, *c.Pax, c.PaxOrMore) {
			return false
		}
		if c.MinCoveredArea != nil && p.MtsCubiertos < *c.MinCoveredArea {
			return false
		}
		return true
	})
}

func atLeast(have, want int, orMore bool) bool {
	if orMore {
		return have >= want
	}
	return have == want
}

func filterLocation(props []models.Property, c Criteria) []models.Property {
	if c.Region == "" && len(c.Neighborhoods) == 0 && c.Type == "" && c.Bounds == nil {
		return props
	}
	typeID := c.Type.ID()
	// Names are compared by catalog key so stored spellings without accents
	// still match the canonical catalog names.
	region := catalog.Key(c.Region)
	neighborhoods := make(map[string]struct{}, len(c.Neighborhoods))
	for _, n := range c.Neighborhoods {
		neighborhoods[catalog.Key(n)] = struct{}{}
	}
	return keep(props, func(p *models.Property) bool {
		if region != "" && catalog.Key(p.Zona) != region {
			return false
		}
		if len(neighborhoods) > 0 {
			if _, ok := neighborhoods[catalog.Key(p.Barrio)]; !ok {
				return false
			}
		}
		if typeID != 0 && !p.HasType(typeID) {
			return false
		}
		if c.Bounds != nil {
			if p.Latitude == nil || p.Longitude == nil {
				return false
			}
			if !c.Bounds.Contains(orb.Point{*p.Longitude, *p.Latitude}) {
				return false
			}
		}
		return true
	})
}

func filterAmenities(props []models.Property, c Criteria) []models.Property {
	if !c.Pool && !c.Pets {
		return props
	}
	return keep(props, func(p *models.Property) bool {
		return (!c.Pool || p.TienePiscina) && (!c.Pets || p.AceptaMascota)
	})
}

// filterText is a boolean case-insensitive substring filter, not a ranking.
func filterText(props []models.Property, c Criteria) []models.Property {
	if c.Query == "" {
		return props
	}
	needle := catalog.Fold(c.Query)
	return keep(props, func(p *models.Property) bool {
		haystack := strings.Join([]string{p.Title, p.Description, p.Barrio, p.FTS}, "\n")
		return strings.Contains(catalog.Fold(haystack), needle)
	})
}

// priceFromPeriods keeps only the properties with an offer and attaches it.
func priceFromPeriods(props []models.Property, offers map[int64]periods.Resolution) []models.PricedListing {
	out := make([]models.PricedListing, 0, len(props))
	for _, p := range props {
		offer, ok := offers[p.PropertyID]
		if !ok {
			continue
		}
		out = append(out, models.PricedListing{
			Property:          p,
			FinalDisplayPrice: offer.Price,
			FoundPeriodName:   offer.Label,
		})
	}
	return out
}

func priceFromListing(props []models.Property, op catalog.Operation) []models.PricedListing {
	out := make([]models.PricedListing, len(props))
	for i := range props {
		out[i] = models.PricedListing{
			Property:          props[i],
			FinalDisplayPrice: pricing.BasePrice(&props[i], op),
		}
	}
	return out
}

// filterPriceRange runs after pricing. A listing priced on request cannot
// satisfy a numeric range and is dropped whenever a bound is given.
func filterPriceRange(listings []models.PricedListing, c Criteria) []models.PricedListing {
	if !c.HasPriceRange() {
		return listings
	}
	out := make([]models.PricedListing, 0, len(listings))
	for _, l := range listings {
		price := l.FinalDisplayPrice
		if price == pricing.OnRequest {
			continue
		}
		if c.MinPrice != nil && price < *c.MinPrice {
			continue
		}
		if c.MaxPrice != nil && price > *c.MaxPrice {
			continue
		}
		out = append(out, l)
	}
	return out
}

// sortListings orders by resolved price; listings priced on request go last
// in both directions. The default mode keeps the incoming order.
func sortListings(listings []models.PricedListing, mode catalog.SortMode) []models.PricedListing {
	out := slices.Clone(listings)
	switch mode {
	case catalog.SortPriceAsc:
		slices.SortStableFunc(out, func(a, b models.PricedListing) int {
			return cmp.Compare(ascKey(a.FinalDisplayPrice), ascKey(b.FinalDisplayPrice))
		})
	case catalog.SortPriceDesc:
		slices.SortStableFunc(out, func(a, b models.PricedListing) int {
			return cmp.Compare(descKey(b.FinalDisplayPrice), descKey(a.FinalDisplayPrice))
		})
	}
	return out
}

func ascKey(price int64) int64 {
	if price <= pricing.OnRequest {
		return math.MaxInt64
	}
	return price
}

func descKey(price int64) int64 {
	if price <= pricing.OnRequest {
		return math.MinInt64
	}
	return price
}

func paginate(listings []models.PricedListing, offset, limit int) []models.PricedListing {
	offset = max(offset, 0)
	if offset >= len(listings) {
		return []models.PricedListing{}
	}
	end := len(listings)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return slices.Clone(listings[offset:end])
}
