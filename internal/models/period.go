package models

// Period is a named seasonal pricing window of a property. Price is kept as
// the raw text delivered by the office ("$5.300", "USD 4000") and parsed when
// read.
type Period struct {
	ID           uint   `json:"-" gorm:"primaryKey"`
	PropertyID   int64  `json:"property_id" gorm:"not null;uniqueIndex:idx_periods_property_name"`
	PeriodName   string `json:"period_name" gorm:"not null;uniqueIndex:idx_periods_property_name"`
	Price        string `json:"price"`
	Status       string `json:"status" gorm:"index"`
	DurationDays *int   `json:"duration_days"`
}

func (Period) TableName() string {
	return "periods"
}
