package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"propsearch/server/internal/catalog"
)

// regionFile is the on-disk shape of a regions file.
type regionFile struct {
	Regions []catalog.Region `json:"regions"`
}

// LoadRegionCatalog builds the region catalog from the JSON file at path, or
// from DefaultRegions when path is empty.
func LoadRegionCatalog(path string) (*catalog.Regions, error) {
	if path == "" {
		return catalog.NewRegions(DefaultRegions), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}

	var file regionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse regions file: %w", err)
	}
	if len(file.Regions) == 0 {
		return nil, fmt.Errorf("regions file %s defines no regions", path)
	}

	return catalog.NewRegions(file.Regions), nil
}
