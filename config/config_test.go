package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the test into dir so LoadConfig sees only the .env written there.
func chdir(t *testing.T, dir string) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5250", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQueryThreshold)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, 3, cfg.BatchProcessing.MaxRetries)
}

func TestLoadConfig_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "host=localhost dbname=props")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SEARCH_DEFAULT_LIMIT", "50")
	t.Setenv("SEARCH_MAX_LIMIT", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=localhost dbname=props", cfg.Database.DSN)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 50, cfg.Search.DefaultLimit)
	assert.Equal(t, 50, cfg.Search.MaxLimit, "max limit never drops below the default")
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9090\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PORT") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadRegionCatalog_Default(t *testing.T) {
	regions, err := LoadRegionCatalog("")
	require.NoError(t, err)

	name, ok := regions.Region("carilo")
	assert.True(t, ok)
	assert.Equal(t, "Cariló", name)

	assert.Len(t, regions.List(), len(GetRegionNames()))
}

func TestLoadRegionCatalog_File(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectError bool
		region      string
	}{
		{
			name:    "Valid file",
			content: `{"regions": [{"name": "Villa Gesell", "neighborhoods": ["Norte", "Centro"]}]}`,
			region:  "Villa Gesell",
		},
		{
			name:        "No regions",
			content:     `{"regions": []}`,
			expectError: true,
		},
		{
			name:        "Malformed JSON",
			content:     `{"regions": [`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "regions.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			regions, err := LoadRegionCatalog(path)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			name, ok := regions.Region(tt.region)
			assert.True(t, ok)
			assert.Equal(t, tt.region, name)

			_, ok = regions.Region("Pinamar")
			assert.False(t, ok, "a regions file replaces the built-in list")
		})
	}
}

func TestLoadRegionCatalog_MissingFile(t *testing.T) {
	_, err := LoadRegionCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
