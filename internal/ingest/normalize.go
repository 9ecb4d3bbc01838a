package ingest

import (
	"strings"

	"propsearch/server/internal/catalog"
	"propsearch/server/internal/models"
)

// Summary counts what an import kept and dropped.
type Summary struct {
	Properties        int `json:"properties"`
	Periods           int `json:"periods"`
	DroppedProperties int `json:"dropped_properties"`
	DroppedPeriods    int `json:"dropped_periods"`
	Batches           int `json:"batches"`
}

func (s *Summary) add(o Summary) {
	s.Properties += o.Properties
	s.Periods += o.Periods
	s.DroppedProperties += o.DroppedProperties
	s.DroppedPeriods += o.DroppedPeriods
	s.Batches += o.Batches
}

// BuildFTS returns the lowercase search text of a property: title,
// neighborhood and region.
func BuildFTS(p *models.Property) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.Barrio, p.Zona} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Normalize cleans a feed for storage. Properties without an id are dropped
// and a repeated id keeps its last row. Periods are kept only when they
// belong to a kept property, have a name and are available; a repeated
// (property, name) pair keeps its last row.
func Normalize(feed *Feed) ([]models.Property, []models.Period, Summary) {
	var sum Summary

	props := make([]models.Property, 0, len(feed.Properties))
	index := make(map[int64]int, len(feed.Properties))
	for _, p := range feed.Properties {
		if p.PropertyID <= 0 {
			sum.DroppedProperties++
			continue
		}
		p.Title = strings.TrimSpace(p.Title)
		p.Zona = strings.TrimSpace(p.Zona)
		p.Barrio = strings.TrimSpace(p.Barrio)
		if strings.TrimSpace(p.FTS) == "" {
			p.FTS = BuildFTS(&p)
		}
		if i, dup := index[p.PropertyID]; dup {
			props[i] = p
			sum.DroppedProperties++
			continue
		}
		index[p.PropertyID] = len(props)
		props = append(props, p)
	}

	type periodKey struct {
		id   int64
		name string
	}
	periods := make([]models.Period, 0, len(feed.Periods))
	seen := make(map[periodKey]int, len(feed.Periods))
	for _, fp := range feed.Periods {
		name := strings.TrimSpace(fp.PeriodName)
		if _, ok := index[fp.PropertyID]; !ok || name == "" || !catalog.IsAvailable(fp.Status) {
			sum.DroppedPeriods++
			continue
		}
		period := models.Period{
			PropertyID:   fp.PropertyID,
			PeriodName:   name,
			Price:        strings.TrimSpace(string(fp.Price)),
			Status:       catalog.PeriodAvailable,
			DurationDays: fp.DurationDays,
		}
		key := periodKey{fp.PropertyID, name}
		if i, dup := seen[key]; dup {
			periods[i] = period
			sum.DroppedPeriods++
			continue
		}
		seen[key] = len(periods)
		periods = append(periods, period)
	}

	sum.Properties = len(props)
	sum.Periods = len(periods)
	return props, periods, sum
}

// Batches splits properties into batches of at most size properties, each
// carrying every period of its properties.
func Batches(props []models.Property, periods []models.Period, size int) []*models.ImportBatch {
	if size < 1 {
		size = 1
	}
	byProperty := make(map[int64][]models.Period)
	for _, period := range periods {
		byProperty[period.PropertyID] = append(byProperty[period.PropertyID], period)
	}

	var batches []*models.ImportBatch
	for start := 0; start < len(props); start += size {
		end := min(start+size, len(props))
		batch := &models.ImportBatch{Properties: props[start:end:end]}
		for _, p := range batch.Properties {
			batch.Periods = append(batch.Periods, byProperty[p.PropertyID]...)
		}
		batches = append(batches, batch)
	}
	return batches
}
