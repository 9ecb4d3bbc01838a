package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"propsearch/server/config"
	"propsearch/server/internal/catalog"
	"propsearch/server/internal/models"
)

// periodChunkSize keeps IN lists well below the bind variable limits of the
// supported drivers.
const periodChunkSize = 500

type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewDatabase(cfg config.DatabaseConfig, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for the postgres driver")
		}
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(logger, cfg.SlowQueryThreshold)})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return &Database{db: db, logger: logger}, nil
}

// NewTestDB opens a private in-memory SQLite database on a single
// connection.
func NewTestDB() (*Database, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	d, err := NewDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return d, nil
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

// Ping checks that the store is reachable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// FetchProperties returns the properties matching the structured part of a
// search, ordered by id.
func (d *Database) FetchProperties(ctx context.Context, q models.PropertyQuery) ([]models.Property, error) {
	tx := d.db.WithContext(ctx).Model(&models.Property{})
	postgresDialect := d.db.Dialector.Name() == "postgres"

	if q.ActiveStatus != 0 {
		if postgresDialect {
			tx = tx.Where("(COALESCE(jsonb_typeof(status_ids), 'null') <> 'array' OR status_ids = '[]'::jsonb OR status_ids @> ?::jsonb)",
				jsonArray(q.ActiveStatus))
		} else {
			tx = tx.Where("(COALESCE(json_array_length(status_ids), 0) = 0 OR EXISTS (SELECT 1 FROM json_each(properties.status_ids) WHERE json_each.value = ?))",
				q.ActiveStatus)
		}
	}

	if len(q.Categories) > 0 {
		if postgresDialect {
			clauses := make([]string, len(q.Categories))
			args := make([]interface{}, len(q.Categories))
			for i, id := range q.Categories {
				clauses[i] = "category_ids @> ?::jsonb"
				args[i] = jsonArray(id)
			}
			tx = tx.Where("("+strings.Join(clauses, " OR ")+")", args...)
		} else {
			tx = tx.Where("EXISTS (SELECT 1 FROM json_each(properties.category_ids) WHERE json_each.value IN ?)", q.Categories)
		}
	}

	if q.TypeID != 0 {
		if postgresDialect {
			tx = tx.Where("type_ids @> ?::jsonb", jsonArray(q.TypeID))
		} else {
			tx = tx.Where("EXISTS (SELECT 1 FROM json_each(properties.type_ids) WHERE json_each.value = ?)", q.TypeID)
		}
	}

	if q.Region != "" {
		tx = tx.Where("zona_key = ?", catalog.Key(q.Region))
	}

	var properties []models.Property
	if err := tx.Order("property_id").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return properties, nil
}

// FetchPeriods returns the periods of the given properties whose status
// equals status, ignoring case and surrounding spaces.
func (d *Database) FetchPeriods(ctx context.Context, propertyIDs []int64, status string) ([]models.Period, error) {
	var periods []models.Period
	for start := 0; start < len(propertyIDs); start += periodChunkSize {
		end := min(start+periodChunkSize, len(propertyIDs))

		var chunk []models.Period
		err := d.db.WithContext(ctx).
			Where("property_id IN ?", propertyIDs[start:end]).
			Where("LOWER(TRIM(status)) = LOWER(?)", strings.TrimSpace(status)).
			Order("property_id, id").
			Find(&chunk).Error
		if err != nil {
			return nil, fmt.Errorf("failed to query periods: %w", err)
		}
		periods = append(periods, chunk...)
	}
	return periods, nil
}

func jsonArray(ids ...int) string {
	data, _ := json.Marshal(ids)
	return string(data)
}
