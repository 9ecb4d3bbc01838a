// Package periods decides, per property, which seasonal period is offered for
// a selector and at what price.
package periods

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"propsearch/server/internal/catalog"
	"propsearch/server/internal/models"
	"propsearch/server/internal/pricing"
)

// Fetcher loads the period rows of a set of properties that have the given
// status.
type Fetcher interface {
	FetchPeriods(ctx context.Context, propertyIDs []int64, status string) ([]models.Period, error)
}

// Matcher decides whether a period row belongs to the selected window.
type Matcher interface {
	Match(periodName string, selector catalog.PeriodSelector) bool
}

// FragmentMatcher matches a period when its name contains, ignoring case, any
// keyword fragment of the selector. Period names embed literal dates typed by
// staff, so containment survives edits to the surrounding text.
type FragmentMatcher struct{}

func (FragmentMatcher) Match(periodName string, selector catalog.PeriodSelector) bool {
	name := catalog.Fold(periodName)
	for _, fragment := range selector.Fragments() {
		if fragment != "" && strings.Contains(name, catalog.Fold(fragment)) {
			return true
		}
	}
	return false
}

// Resolution is the price and label to display for one property.
type Resolution struct {
	Price int64
	Label string
}

// Resolver reconciles properties with their period rows.
type Resolver struct {
	fetcher Fetcher
	matcher Matcher
	logger  *logrus.Logger
}

// NewResolver creates a resolver. A nil matcher selects FragmentMatcher.
func NewResolver(fetcher Fetcher, matcher Matcher, logger *logrus.Logger) *Resolver {
	if matcher == nil {
		matcher = FragmentMatcher{}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Resolver{fetcher: fetcher, matcher: matcher, logger: logger}
}

// Resolve returns the offer of every property that has a priced, available
// period for the selector. Properties absent from the result have none.
//
// With a selector the first matching row of a property wins and its name is
// the label. Without one the cheapest priced row wins and the label is
// catalog.StartingFromLabel. Rows whose price parses to zero are never
// offered.
func (r *Resolver) Resolve(ctx context.Context, propertyIDs []int64, selector catalog.PeriodSelector) (map[int64]Resolution, error) {
	out := make(map[int64]Resolution)
	if len(propertyIDs) == 0 {
		return out, nil
	}

	rows, err := r.fetcher.FetchPeriods(ctx, propertyIDs, catalog.PeriodAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch periods: %w", err)
	}

	wanted := make(map[int64]struct{}, len(propertyIDs))
	for _, id := range propertyIDs {
		wanted[id] = struct{}{}
	}

	var unpriced int
	for _, row := range rows {
		if _, ok := wanted[row.PropertyID]; !ok || !catalog.IsAvailable(row.Status) {
			continue
		}
		price := pricing.ParseAmount(row.Price)
		if price == pricing.OnRequest {
			unpriced++
			continue
		}

		if selector != "" {
			if _, done := out[row.PropertyID]; done {
				continue
			}
			if r.matcher.Match(row.PeriodName, selector) {
				out[row.PropertyID] = Resolution{Price: price, Label: row.PeriodName}
			}
			continue
		}

		current, seen := out[row.PropertyID]
		if !seen || price < current.Price {
			out[row.PropertyID] = Resolution{Price: price, Label: catalog.StartingFromLabel}
		}
	}

	r.logger.WithFields(logrus.Fields{
		"properties": len(propertyIDs),
		"periods":    len(rows),
		"unpriced":   unpriced,
		"offered":    len(out),
		"selector":   string(selector),
	}).Debug("Resolved period prices")

	return out, nil
}
