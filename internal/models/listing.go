package models

// PricedListing is a property as returned by a search: the stored fields plus
// the price resolved for this request. FinalDisplayPrice 0 means the price is
// given on request.
type PricedListing struct {
	Property
	FinalDisplayPrice int64  `json:"final_display_price"`
	FoundPeriodName   string `json:"found_period_name,omitempty"`
}

// SearchResult is the envelope returned to every search caller. Count is the
// size of the filtered set before pagination.
type SearchResult struct {
	Count   int             `json:"count"`
	Results []PricedListing `json:"results"`
}

// ImportBatch is one unit of work for the ingestion queue.
type ImportBatch struct {
	Properties []Property
	Periods    []Period
}

// Size returns the number of rows carried by the batch.
func (b *ImportBatch) Size() int {
	return len(b.Properties) + len(b.Periods)
}
