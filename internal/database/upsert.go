package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"propsearch/server/internal/models"
)

const upsertBatchSize = 100

// UpsertProperties inserts properties or replaces the stored row with the
// same property_id.
func UpsertProperties(tx *gorm.DB, properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}},
		UpdateAll: true,
	}).CreateInBatches(properties, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert properties: %w", err)
	}
	return nil
}

// UpsertPeriods inserts periods or updates price, status and duration of
// the stored period with the same property and name.
func UpsertPeriods(tx *gorm.DB, periods []models.Period) error {
	if len(periods) == 0 {
		return nil
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}, {Name: "period_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "status", "duration_days"}),
	}).CreateInBatches(periods, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert periods: %w", err)
	}
	return nil
}

// DeletePeriodsNotIn removes the periods of a property whose names are not
// listed, so a property that went out of season loses its stale windows.
func DeletePeriodsNotIn(tx *gorm.DB, propertyID int64, names []string) error {
	q := tx.Where("property_id = ?", propertyID)
	if len(names) > 0 {
		q = q.Where("period_name NOT IN ?", names)
	}
	if err := q.Delete(&models.Period{}).Error; err != nil {
		return fmt.Errorf("failed to prune periods of property %d: %w", propertyID, err)
	}
	return nil
}
