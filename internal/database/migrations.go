package database

import (
	"fmt"

	"propsearch/server/internal/catalog"
	"propsearch/server/internal/models"
)

// RunMigrations creates or updates the properties and periods tables.
func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&models.Property{}, &models.Period{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_periods_property_status
		ON periods(property_id, status);
	`).Error; err != nil {
		return fmt.Errorf("failed to create periods index: %w", err)
	}

	return d.backfillZonaKeys()
}

// backfillZonaKeys fills zona_key for rows written before the column existed.
func (d *Database) backfillZonaKeys() error {
	var stale []models.Property
	err := d.db.Model(&models.Property{}).
		Select("property_id", "zona").
		Where("(zona_key IS NULL OR zona_key = '') AND zona <> ''").
		Find(&stale).Error
	if err != nil {
		return fmt.Errorf("failed to read properties without zona_key: %w", err)
	}
	for _, p := range stale {
		err := d.db.Model(&models.Property{}).
			Where("property_id = ?", p.PropertyID).
			UpdateColumn("zona_key", catalog.Key(p.Zona)).Error
		if err != nil {
			return fmt.Errorf("failed to backfill zona_key for property %d: %w", p.PropertyID, err)
		}
	}
	if len(stale) > 0 {
		d.logger.WithField("properties", len(stale)).Info("Backfilled region keys")
	}
	return nil
}
