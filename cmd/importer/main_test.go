package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propsearch/server/config"
	"propsearch/server/internal/database"
	"propsearch/server/internal/models"
)

const feed = `{
	"properties": [
		{"property_id": 1, "title": "Casa Golf", "zona": "Carilo", "barrio": "Carilo Golf"},
		{"property_id": 2, "title": "Depto Centro", "zona": "Pinamar"}
	],
	"periods": [
		{"property_id": 1, "period_name": "Navidad", "price": 5300.5, "status": "Disponible"}
	]
}`

func setupEnv(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "import.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("BATCH_PROCESSOR_COUNT", "1")
	return path
}

func openDB(t *testing.T, path string) *database.Database {
	db, err := database.NewDatabase(config.DatabaseConfig{Driver: "sqlite", Path: path}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_MissingFeed(t *testing.T) {
	setupEnv(t)
	assert.Equal(t, 2, run(nil, strings.NewReader("")))
	assert.Equal(t, 2, run([]string{"-unknown"}, strings.NewReader("")))
}

func TestRun_ImportsDocument(t *testing.T) {
	path := setupEnv(t)

	require.Equal(t, 0, run([]string{"-feed", "-"}, strings.NewReader(feed)))

	db := openDB(t, path)
	props, err := db.FetchProperties(context.Background(), models.PropertyQuery{Region: "Cariló"})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, int64(1), props[0].PropertyID)

	periods, err := db.FetchPeriods(context.Background(), []int64{1}, "Disponible")
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, "5300", periods[0].Price)
}

func TestRun_FailuresReturnInsteadOfExiting(t *testing.T) {
	path := setupEnv(t)

	assert.Equal(t, 1, run([]string{"-feed", "-"}, strings.NewReader("{not json")))
	assert.Equal(t, 1, run([]string{"-feed", filepath.Join(t.TempDir(), "missing.json")}, strings.NewReader("")))

	// The database was released on the failure paths and is still usable.
	require.Equal(t, 0, run([]string{"-feed", "-"}, strings.NewReader(feed)))
	db := openDB(t, path)
	props, err := db.FetchProperties(context.Background(), models.PropertyQuery{})
	require.NoError(t, err)
	assert.Len(t, props, 2)
}
