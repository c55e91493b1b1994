package locations

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"restaurant-listing-admin/internal/models"
	testutil "restaurant-listing-admin/internal/testing"
)

func newTestResolver(lookup *testutil.MockLookup) *Resolver {
	return NewResolver(lookup, "050500000", nil)
}

func regionNames(regions []models.Region) []string {
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}
	return names
}

func TestLoadRegionsMergesAndSorts(t *testing.T) {
	lookup := testutil.NewMockLookup()
	lookup.MunicipalityRes = []models.Region{
		{Code: "m2", Name: "Pili", Kind: models.RegionMunicipality},
		{Code: "m1", Name: "Baao", Kind: models.RegionMunicipality},
	}
	lookup.CityRes = []models.Region{
		{Code: "c2", Name: "Naga City", Kind: models.RegionCity},
		{Code: "c1", Name: "Iriga City", Kind: models.RegionCity},
	}

	r := newTestResolver(lookup)
	if err := r.LoadRegions(context.Background()); err != nil {
		t.Fatalf("LoadRegions: %v", err)
	}

	want := []string{"Baao", "Iriga City", "Naga City", "Pili"}
	if got := regionNames(r.Regions()); !reflect.DeepEqual(got, want) {
		t.Errorf("regions = %v, want %v", got, want)
	}
}

func TestLoadRegionsErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testutil.MockLookup)
	}{
		{"municipality fetch fails", func(m *testutil.MockLookup) { m.MunicipalityErr = errors.New("boom") }},
		{"city fetch fails", func(m *testutil.MockLookup) { m.CityErr = errors.New("boom") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := testutil.NewMockLookup()
			lookup.MunicipalityRes = []models.Region{{Code: "m1", Name: "Baao"}}
			tt.setup(lookup)

			r := newTestResolver(lookup)
			if err := r.LoadRegions(context.Background()); err == nil {
				t.Fatal("expected error")
			}
			if got := r.Regions(); len(got) != 0 {
				t.Errorf("failed load should leave regions empty, got %v", got)
			}
		})
	}
}

func TestSelectLoadsSortedBarangays(t *testing.T) {
	lookup := testutil.NewMockLookup()
	lookup.BarangayRes["m1"] = []models.Subdivision{
		{Code: "b2", Name: "San Roque"},
		{Code: "b1", Name: "Del Rosario"},
	}

	r := newTestResolver(lookup)
	if err := r.Select(context.Background(), "m1"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	if got := r.Selected(); got != "m1" {
		t.Errorf("Selected = %q, want m1", got)
	}
	subs := r.Subdivisions()
	if len(subs) != 2 || subs[0].Name != "Del Rosario" || subs[1].Name != "San Roque" {
		t.Errorf("subdivisions = %v, want sorted by name", subs)
	}
}

func TestSelectReplacesPreviousSubdivisions(t *testing.T) {
	lookup := testutil.NewMockLookup()
	lookup.BarangayRes["a"] = []models.Subdivision{{Code: "a1", Name: "Anayan"}}
	lookup.BarangayRes["b"] = []models.Subdivision{{Code: "b1", Name: "Bagumbayan"}}

	r := newTestResolver(lookup)
	if err := r.Select(context.Background(), "a"); err != nil {
		t.Fatalf("Select a: %v", err)
	}
	if err := r.Select(context.Background(), "b"); err != nil {
		t.Fatalf("Select b: %v", err)
	}

	subs := r.Subdivisions()
	if len(subs) != 1 || subs[0].Name != "Bagumbayan" {
		t.Errorf("subdivisions = %v, want only b's", subs)
	}
}

func TestSelectFailureLeavesSubdivisionsEmpty(t *testing.T) {
	lookup := testutil.NewMockLookup()
	lookup.BarangayRes["ok"] = []models.Subdivision{{Code: "x", Name: "Abella"}}
	lookup.BarangayErr["bad"] = errors.New("both lookups failed")

	r := newTestResolver(lookup)
	if err := r.Select(context.Background(), "ok"); err != nil {
		t.Fatalf("Select ok: %v", err)
	}
	if err := r.Select(context.Background(), "bad"); err == nil {
		t.Fatal("expected error for bad region")
	}

	// The old list was cleared when the new selection was made, and the
	// failed fetch must not bring it back.
	if subs := r.Subdivisions(); len(subs) != 0 {
		t.Errorf("subdivisions after failed select = %v, want empty", subs)
	}
	if got := r.Selected(); got != "bad" {
		t.Errorf("Selected = %q, want bad", got)
	}
}

func TestSelectEmptyCodeClearsOnly(t *testing.T) {
	lookup := testutil.NewMockLookup()
	lookup.BarangayRes["a"] = []models.Subdivision{{Code: "a1", Name: "Anayan"}}

	r := newTestResolver(lookup)
	if err := r.Select(context.Background(), "a"); err != nil {
		t.Fatalf("Select a: %v", err)
	}
	if err := r.Select(context.Background(), ""); err != nil {
		t.Fatalf("Select empty: %v", err)
	}

	if subs := r.Subdivisions(); len(subs) != 0 {
		t.Errorf("subdivisions = %v, want empty", subs)
	}
	if calls := len(lookup.BarangayCalls); calls != 1 {
		t.Errorf("barangay calls = %d, empty selection must not fetch", calls)
	}
}

func TestStaleBarangayFetchDiscarded(t *testing.T) {
	lookup := testutil.NewMockLookup()
	lookup.BarangayRes["slow"] = []models.Subdivision{{Code: "s1", Name: "Stale"}}
	lookup.BarangayRes["fast"] = []models.Subdivision{{Code: "f1", Name: "Fresh"}}

	gate := make(chan struct{})
	lookup.BarangayGate = gate

	r := newTestResolver(lookup)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Select(context.Background(), "slow")
	}()

	// Wait until the slow fetch is in flight, then supersede it.
	for {
		lookup.Mu.Lock()
		started := len(lookup.BarangayCalls) == 1
		if started {
			lookup.BarangayGate = nil
		}
		lookup.Mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := r.Select(context.Background(), "fast"); err != nil {
		t.Fatalf("Select fast: %v", err)
	}

	close(gate)
	wg.Wait()

	subs := r.Subdivisions()
	if len(subs) != 1 || subs[0].Name != "Fresh" {
		t.Errorf("subdivisions = %v, stale fetch overwrote newer selection", subs)
	}
}

func TestRegionCodeByName(t *testing.T) {
	lookup := testutil.NewMockLookup()
	lookup.MunicipalityRes = []models.Region{{Code: "m1", Name: "Pili", Kind: models.RegionMunicipality}}

	r := newTestResolver(lookup)
	if err := r.LoadRegions(context.Background()); err != nil {
		t.Fatalf("LoadRegions: %v", err)
	}

	t.Run("cached hit", func(t *testing.T) {
		code, ok := r.RegionCodeByName(context.Background(), "Pili")
		if !ok || code != "m1" {
			t.Errorf("RegionCodeByName = (%q,%v), want (m1,true)", code, ok)
		}
	})

	t.Run("miss reloads once then finds", func(t *testing.T) {
		lookup.Mu.Lock()
		lookup.MunicipalityRes = append(lookup.MunicipalityRes, models.Region{Code: "m2", Name: "Bula"})
		before := lookup.RegionLoadCalls
		lookup.Mu.Unlock()

		code, ok := r.RegionCodeByName(context.Background(), "Bula")
		if !ok || code != "m2" {
			t.Errorf("RegionCodeByName = (%q,%v), want (m2,true)", code, ok)
		}

		lookup.Mu.Lock()
		loads := lookup.RegionLoadCalls - before
		lookup.Mu.Unlock()
		if loads != 1 {
			t.Errorf("reloads = %d, want exactly 1", loads)
		}
	})

	t.Run("still missing gives up", func(t *testing.T) {
		lookup.Mu.Lock()
		before := lookup.RegionLoadCalls
		lookup.Mu.Unlock()

		code, ok := r.RegionCodeByName(context.Background(), "Atlantis")
		if ok || code != "" {
			t.Errorf("RegionCodeByName = (%q,%v), want miss", code, ok)
		}

		lookup.Mu.Lock()
		loads := lookup.RegionLoadCalls - before
		lookup.Mu.Unlock()
		if loads != 1 {
			t.Errorf("reloads = %d, want exactly 1", loads)
		}
	})
}
