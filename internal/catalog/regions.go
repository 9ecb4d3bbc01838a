package catalog

// Region is a zone of the coast together with the neighborhoods it contains.
type Region struct {
	Name          string   `json:"name"`
	Neighborhoods []string `json:"neighborhoods"`
}

// Regions resolves caller-supplied region and neighborhood names to their
// canonical spelling. It is immutable once built and safe for concurrent use.
type Regions struct {
	list          []Region
	regions       map[string]string
	neighborhoods map[string]string
}

// NewRegions indexes the given regions. Later duplicates of a name are ignored.
func NewRegions(list []Region) *Regions {
	r := &Regions{
		regions:       make(map[string]string),
		neighborhoods: make(map[string]string),
	}
	for _, region := range list {
		key := Key(region.Name)
		if key == "" {
			continue
		}
		if _, dup := r.regions[key]; dup {
			continue
		}
		r.regions[key] = region.Name
		kept := Region{Name: region.Name}
		for _, n := range region.Neighborhoods {
			nk := Key(n)
			if nk == "" {
				continue
			}
			if _, dup := r.neighborhoods[nk]; !dup {
				r.neighborhoods[nk] = n
			}
			kept.Neighborhoods = append(kept.Neighborhoods, n)
		}
		r.list = append(r.list, kept)
	}
	return r
}

// Region returns the canonical region name for s.
func (r *Regions) Region(s string) (string, bool) {
	name, ok := r.regions[Key(s)]
	return name, ok
}

// Neighborhood returns the canonical neighborhood name for s.
func (r *Regions) Neighborhood(s string) (string, bool) {
	name, ok := r.neighborhoods[Key(s)]
	return name, ok
}

// List returns a copy of the indexed regions.
func (r *Regions) List() []Region {
	out := make([]Region, len(r.list))
	for i, region := range r.list {
		out[i] = Region{Name: region.Name, Neighborhoods: append([]string(nil), region.Neighborhoods...)}
	}
	return out
}
