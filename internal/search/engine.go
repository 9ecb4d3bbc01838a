// Package search narrows the property catalog for a set of criteria, prices
// the survivors and pages the result.
package search

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"propsearch/server/internal/catalog"
	"propsearch/server/internal/models"
	"propsearch/server/internal/periods"
)

// PropertyFetcher returns the raw property rows matching a structured query.
type PropertyFetcher interface {
	FetchProperties(ctx context.Context, q models.PropertyQuery) ([]models.Property, error)
}

// PeriodResolver prices properties from their seasonal periods.
type PeriodResolver interface {
	Resolve(ctx context.Context, propertyIDs []int64, selector catalog.PeriodSelector) (map[int64]periods.Resolution, error)
}

// Engine runs searches. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	properties PropertyFetcher
	periods    PeriodResolver
	regions    *catalog.Regions
	logger     *logrus.Logger
}

// NewEngine builds an engine over the given stores. With a nil regions catalog
// region and neighborhood names are not validated.
func NewEngine(properties PropertyFetcher, resolver PeriodResolver, regions *catalog.Regions, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Engine{properties: properties, periods: resolver, regions: regions, logger: logger}
}

// Search returns the page of listings selected by c and the size of the whole
// filtered set. Store failures fail the whole call; nothing partial is
// returned.
func (e *Engine) Search(ctx context.Context, c Criteria) (*models.SearchResult, error) {
	if err := c.check(e.regions); err != nil {
		return nil, err
	}
	start := time.Now()

	query := models.PropertyQuery{
		ActiveStatus: catalog.StatusActive,
		Categories:   c.Categories(),
		Region:       c.Region,
		TypeID:       c.Type.ID(),
	}
	props, err := e.properties.FetchProperties(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}
	fetched := len(props)

	props = filterStatus(props)
	props = filterCategory(props, c)
	props = filterStructural(props, c)
	props = filterLocation(props, c)
	props = filterAmenities(props, c)
	props = filterText(props, c)

	var listings []models.PricedListing
	if c.Seasonal() {
		ids := make([]int64, len(props))
		for i := range props {
			ids[i] = props[i].PropertyID
		}
		offers, err := e.periods.Resolve(ctx, ids, c.Period)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve period prices: %w", err)
		}
		listings = priceFromPeriods(props, offers)
	} else {
		listings = priceFromListing(props, c.Operation)
	}

	listings = filterPriceRange(listings, c)
	listings = sortListings(listings, c.Sort)

	result := &models.SearchResult{
		Count:   len(listings),
		Results: paginate(listings, c.Offset, c.Limit),
	}

	e.logger.WithFields(logrus.Fields{
		"operation": string(c.Operation),
		"period":    string(c.Period),
		"fetched":   fetched,
		"count":     result.Count,
		"returned":  len(result.Results),
		"duration":  time.Since(start).String(),
	}).Debug("Search completed")

	return result, nil
}
