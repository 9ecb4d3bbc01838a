package config

import "propsearch/server/internal/catalog"

// DefaultRegions is the built-in region catalog used when no regions file
// is configured.
var DefaultRegions = []catalog.Region{
	{
		Name: "Pinamar",
		Neighborhoods: []string{
			"Pinamar Norte", "Pinamar Centro", "Pinamar Sur", "Golf",
			"Bosque Norte", "La Frontera", "Lasalle",
		},
	},
	{
		Name:          "Cariló",
		Neighborhoods: []string{"Cariló Centro", "Cariló Golf", "Cariló Norte", "Cariló Sur"},
	},
	{
		Name:          "Valeria del Mar",
		Neighborhoods: []string{"Valeria Norte", "Valeria Centro", "Valeria Sur"},
	},
	{
		Name:          "Ostende",
		Neighborhoods: []string{"Ostende Centro", "Ostende Sur"},
	},
	{
		Name:          "Montecarlo",
		Neighborhoods: []string{"Montecarlo"},
	},
}

// GetRegionNames returns the names of the built-in regions
func GetRegionNames() []string {
	names := make([]string, len(DefaultRegions))
	for i, region := range DefaultRegions {
		names[i] = region.Name
	}
	return names
}
