// Package ingest turns the office feed delivered by the external bridge into
// import batches for the processing queue.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"propsearch/server/internal/models"
)

// Feed is one delivery of the bridge: properties together with their
// seasonal periods.
type Feed struct {
	Properties []models.Property `json:"properties"`
	Periods    []FeedPeriod      `json:"periods"`
}

// FeedPeriod is a period row as delivered. The bridge sends the price either
// as display text or as a bare number.
type FeedPeriod struct {
	PropertyID   int64     `json:"property_id"`
	PeriodName   string    `json:"period_name"`
	Price        PriceText `json:"price"`
	Status       string    `json:"status"`
	DurationDays *int      `json:"duration_days"`
}

// PriceText is a price kept as text whatever its JSON type.
type PriceText string

func (p *PriceText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PriceText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("price must be text or a number: %w", err)
		}
		// Fractional amounts are truncated; the price text carries whole units only.
		if f, err := n.Float64(); err == nil && f > math.MinInt64 && f < math.MaxInt64 {
			*p = PriceText(strconv.FormatInt(int64(math.Trunc(f)), 10))
			return nil
		}
		*p = PriceText(n.String())
	}
	return nil
}

// Decode reads a whole feed document.
func Decode(r io.Reader) (*Feed, error) {
	var feed Feed
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return &feed, nil
}
