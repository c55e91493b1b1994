package locations

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"restaurant-listing-admin/internal/models"
	"restaurant-listing-admin/pkg/logging"
)

// Lookup is the slice of the PSGC client the resolver needs.
type Lookup interface {
	Municipalities(ctx context.Context, provinceCode string) ([]models.Region, error)
	Cities(ctx context.Context, provinceCode string) ([]models.Region, error)
	Barangays(ctx context.Context, regionCode string) ([]models.Subdivision, error)
}

// Resolver maintains the cascading location state for the admin form:
// the merged municipality/city list of one province, the currently
// selected region, and that region's barangays.
type Resolver struct {
	mu           sync.RWMutex
	regions      []models.Region
	subdivisions []models.Subdivision
	selectedCode string
	generation   uint64

	provinceCode string
	client       Lookup
	collator     *collate.Collator
	logger       *logging.ComponentLogger
}

// NewResolver creates a resolver scoped to a single province.
func NewResolver(client Lookup, provinceCode string, logger *logging.Logger) *Resolver {
	r := &Resolver{
		provinceCode: provinceCode,
		client:       client,
		collator:     collate.New(language.English),
	}
	if logger != nil {
		r.logger = logger.WithComponent("locations")
	}
	return r
}

// LoadRegions fetches the province's municipalities and cities, merges them
// into one list, and sorts it by name using locale-aware collation.
func (r *Resolver) LoadRegions(ctx context.Context) error {
	municipalities, err := r.client.Municipalities(ctx, r.provinceCode)
	if err != nil {
		return err
	}

	cities, err := r.client.Cities(ctx, r.provinceCode)
	if err != nil {
		return err
	}

	merged := make([]models.Region, 0, len(municipalities)+len(cities))
	merged = append(merged, municipalities...)
	merged = append(merged, cities...)

	sort.SliceStable(merged, func(i, j int) bool {
		return r.collator.CompareString(merged[i].Name, merged[j].Name) < 0
	})

	r.mu.Lock()
	r.regions = merged
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Debug("regions loaded",
			logging.Int("municipalities", len(municipalities)),
			logging.Int("cities", len(cities)))
	}

	return nil
}

// Regions returns a copy of the merged, sorted region list.
func (r *Resolver) Regions() []models.Region {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Region, len(r.regions))
	copy(out, r.regions)
	return out
}

// Select marks a region as the current selection, immediately clears the
// previous barangay list, and loads the barangays for the new selection.
// Each call invalidates any fetch still in flight from an earlier call, so
// a slow response for a stale selection never overwrites a newer one.
func (r *Resolver) Select(ctx context.Context, regionCode string) error {
	r.mu.Lock()
	r.selectedCode = regionCode
	r.subdivisions = nil
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	if regionCode == "" {
		return nil
	}

	subdivisions, err := r.client.Barangays(ctx, regionCode)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("barangay lookup failed",
				logging.String("region_code", regionCode),
				logging.Error(err))
		}
		return err
	}

	sort.SliceStable(subdivisions, func(i, j int) bool {
		return r.collator.CompareString(subdivisions[i].Name, subdivisions[j].Name) < 0
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		// A newer selection superseded this fetch.
		return nil
	}
	r.subdivisions = subdivisions

	return nil
}

// Selected returns the code of the currently selected region.
func (r *Resolver) Selected() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.selectedCode
}

// Subdivisions returns a copy of the barangays for the current selection.
func (r *Resolver) Subdivisions() []models.Subdivision {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Subdivision, len(r.subdivisions))
	copy(out, r.subdivisions)
	return out
}

// RegionCodeByName maps a region name back to its code, used when editing a
// restaurant whose municipality was stored by name. If the name is missing
// from the cached list the regions are reloaded once before giving up.
func (r *Resolver) RegionCodeByName(ctx context.Context, name string) (string, bool) {
	if code, ok := r.findByName(name); ok {
		return code, true
	}

	if err := r.LoadRegions(ctx); err != nil {
		return "", false
	}

	return r.findByName(name)
}

func (r *Resolver) findByName(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, region := range r.regions {
		if region.Name == name {
			return region.Code, true
		}
	}
	return "", false
}
