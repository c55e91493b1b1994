package psgc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"restaurant-listing-admin/internal/constants"
	"restaurant-listing-admin/internal/models"
	"restaurant-listing-admin/pkg/circuit"
	errs "restaurant-listing-admin/pkg/errors"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 2*time.Second), srv
}

func TestMunicipalitiesAndCities(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/provinces/050500000/municipalities/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"code":"050501000","name":"Baao"},{"code":"050502000","name":"Balatan"}]`))
	})
	mux.HandleFunc("/provinces/050500000/cities/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"code":"050516000","name":"Iriga City"}]`))
	})

	client, srv := newTestClient(mux)
	defer srv.Close()

	municipalities, err := client.Municipalities(context.Background(), "050500000")
	if err != nil {
		t.Fatalf("Municipalities: %v", err)
	}
	if len(municipalities) != 2 {
		t.Fatalf("got %d municipalities, want 2", len(municipalities))
	}
	if municipalities[0].Kind != models.RegionMunicipality {
		t.Errorf("kind = %v, want municipality", municipalities[0].Kind)
	}
	if municipalities[0].Code != "050501000" || municipalities[0].Name != "Baao" {
		t.Errorf("first municipality = %+v", municipalities[0])
	}

	cities, err := client.Cities(context.Background(), "050500000")
	if err != nil {
		t.Fatalf("Cities: %v", err)
	}
	if len(cities) != 1 || cities[0].Kind != models.RegionCity {
		t.Fatalf("cities = %+v", cities)
	}
}

func TestBarangaysFallsBackToCityEndpoint(t *testing.T) {
	var municipalityHits, cityHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/municipalities/050516000/barangays/", func(w http.ResponseWriter, r *http.Request) {
		municipalityHits++
		http.NotFound(w, r)
	})
	mux.HandleFunc("/cities/050516000/barangays/", func(w http.ResponseWriter, r *http.Request) {
		cityHits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"code":"050516001","name":"San Roque"}]`))
	})

	client, srv := newTestClient(mux)
	defer srv.Close()

	barangays, err := client.Barangays(context.Background(), "050516000")
	if err != nil {
		t.Fatalf("Barangays: %v", err)
	}
	if municipalityHits != 1 || cityHits != 1 {
		t.Errorf("hits = (%d,%d), want municipality tried first then city", municipalityHits, cityHits)
	}
	if len(barangays) != 1 || barangays[0].Name != "San Roque" {
		t.Errorf("barangays = %+v", barangays)
	}
}

func TestBarangaysMunicipalityHitSkipsFallback(t *testing.T) {
	var cityHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/municipalities/050501000/barangays/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"code":"050501001","name":"Agdangan"}]`))
	})
	mux.HandleFunc("/cities/050501000/barangays/", func(w http.ResponseWriter, r *http.Request) {
		cityHits++
	})

	client, srv := newTestClient(mux)
	defer srv.Close()

	barangays, err := client.Barangays(context.Background(), "050501000")
	if err != nil {
		t.Fatalf("Barangays: %v", err)
	}
	if cityHits != 0 {
		t.Errorf("city endpoint hit %d times after a municipality success", cityHits)
	}
	if len(barangays) != 1 {
		t.Errorf("barangays = %+v", barangays)
	}
}

func TestBarangaysBothEndpointsFail(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := client.Barangays(context.Background(), "123")
	if err == nil {
		t.Fatal("expected error when both endpoints fail")
	}
	if !errs.Is(err, errs.ErrExternal) {
		t.Errorf("error kind = %T, want external API error", err)
	}
}

func TestFetchMalformedResponse(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := client.Municipalities(context.Background(), "050500000")
	if err == nil {
		t.Fatal("expected decode error for non-array body")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want it to match ErrMalformed", err)
	}
	if !errs.Is(err, errs.ErrExternal) {
		t.Errorf("error kind = %T, want external API error", err)
	}
}

func TestBarangaysMalformedResponseSkipsFallback(t *testing.T) {
	var cityHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/municipalities/123/barangays/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not":"an array"}`))
	})
	mux.HandleFunc("/cities/123/barangays/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cityHits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	client, srv := newTestClient(mux)
	defer srv.Close()

	_, err := client.Barangays(context.Background(), "123")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("error = %v, want it to match ErrMalformed", err)
	}
	if n := atomic.LoadInt32(&cityHits); n != 0 {
		t.Errorf("city endpoint hit %d times, want 0: only a status error retries", n)
	}
}

func TestClientDefaults(t *testing.T) {
	c := NewClient("", 0)
	if c.baseURL == "" {
		t.Error("empty baseURL should fall back to the default")
	}
	if c.httpClient.Timeout <= 0 {
		t.Error("zero timeout should fall back to the default")
	}
}

func TestProtectOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	client, srv := newTestClient(mux)
	defer srv.Close()
	client.Protect(nil)

	ctx := context.Background()
	for i := 0; i < constants.PSGCBreakerMaxFailures; i++ {
		if _, err := client.Municipalities(ctx, "050500000"); err == nil {
			t.Fatalf("call %d: expected error from failing upstream", i+1)
		}
	}
	before := atomic.LoadInt32(&hits)

	_, err := client.Municipalities(ctx, "050500000")
	if !errors.Is(err, circuit.ErrOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if after := atomic.LoadInt32(&hits); after != before {
		t.Fatalf("open circuit still reached upstream: %d -> %d hits", before, after)
	}
}
