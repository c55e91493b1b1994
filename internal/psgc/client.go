package psgc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"restaurant-listing-admin/internal/constants"
	"restaurant-listing-admin/internal/models"
	"restaurant-listing-admin/pkg/circuit"
	errs "restaurant-listing-admin/pkg/errors"
	"restaurant-listing-admin/pkg/logging"
)

// Client talks to the PSGC (Philippine Standard Geographic Code) REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

type placeRecord struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ErrMalformed marks a lookup response whose body is not the expected JSON
// array. Callers surface it differently from a plain upstream failure.
var ErrMalformed = errors.New("malformed lookup response")

// errBadStatus marks a non-2xx response; the barangay fallback keys on it.
var errBadStatus = errors.New("unexpected response status")

// NewClient creates a PSGC API client. An empty baseURL or zero timeout
// falls back to the defaults.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultPSGCBaseURL
	}
	if timeout <= 0 {
		timeout = constants.PSGCRequestTimeout
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Protect routes all API calls through a circuit breaker so a flapping
// upstream fails fast instead of stalling every lookup on a timeout.
// Only consecutive failures open the circuit; rate thresholds stay off
// because a lookup miss on the municipality endpoint is a normal part of
// the barangay fallback, not an upstream fault.
func (c *Client) Protect(log *logging.Logger) {
	c.breaker = circuit.New(circuit.Config{
		Name:              "psgc",
		OperationTimeout:  c.httpClient.Timeout,
		OpenFor:           constants.PSGCBreakerOpenFor,
		MaxConsecFailures: constants.PSGCBreakerMaxFailures,
		WindowSize:        20,
		SlowCallThreshold: constants.PSGCBreakerSlowCall,
	}, log)
}

// Municipalities lists the municipalities of a province.
func (c *Client) Municipalities(ctx context.Context, provinceCode string) ([]models.Region, error) {
	var records []placeRecord
	err := c.guard(ctx, func(ctx context.Context) error {
		var opErr error
		records, opErr = c.fetch(ctx, fmt.Sprintf("/provinces/%s/municipalities/", provinceCode))
		return opErr
	})
	if err != nil {
		return nil, err
	}

	return toRegions(records, models.RegionMunicipality), nil
}

// Cities lists the component cities of a province.
func (c *Client) Cities(ctx context.Context, provinceCode string) ([]models.Region, error) {
	var records []placeRecord
	err := c.guard(ctx, func(ctx context.Context) error {
		var opErr error
		records, opErr = c.fetch(ctx, fmt.Sprintf("/provinces/%s/cities/", provinceCode))
		return opErr
	})
	if err != nil {
		return nil, err
	}

	return toRegions(records, models.RegionCity), nil
}

// Barangays lists the barangays under a municipality or city code. The API
// keys barangays by parent type, so a municipality lookup answered with a
// non-success status is retried against the city endpoint before giving up.
// Transport and decode errors are not retried. The whole chain counts as one
// guarded operation; only a miss on both endpoints is a failure.
func (c *Client) Barangays(ctx context.Context, regionCode string) ([]models.Subdivision, error) {
	var records []placeRecord
	err := c.guard(ctx, func(ctx context.Context) error {
		var opErr error
		records, opErr = c.fetch(ctx, fmt.Sprintf("/municipalities/%s/barangays/", regionCode))
		if errors.Is(opErr, errBadStatus) {
			records, opErr = c.fetch(ctx, fmt.Sprintf("/cities/%s/barangays/", regionCode))
		}
		return opErr
	})
	if err != nil {
		return nil, err
	}

	subdivisions := make([]models.Subdivision, 0, len(records))
	for _, r := range records {
		subdivisions = append(subdivisions, models.Subdivision{Code: r.Code, Name: r.Name})
	}

	return subdivisions, nil
}

func (c *Client) guard(ctx context.Context, op func(ctx context.Context) error) error {
	if c.breaker == nil {
		return op(ctx)
	}
	return c.breaker.Do(ctx, op, nil)
}

func (c *Client) fetch(ctx context.Context, path string) ([]placeRecord, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.NewExternal("psgc.fetch", "psgc", "building request for "+url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewExternal("psgc.fetch", "psgc", "requesting "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, errs.NewExternal("psgc.fetch", "psgc",
			fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url), errBadStatus)
	}

	var records []placeRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, errs.NewExternal("psgc.fetch", "psgc", "decoding response from "+url,
			fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	return records, nil
}

func toRegions(records []placeRecord, kind models.RegionKind) []models.Region {
	regions := make([]models.Region, 0, len(records))
	for _, r := range records {
		regions = append(regions, models.Region{Code: r.Code, Name: r.Name, Kind: kind})
	}

	return regions
}
