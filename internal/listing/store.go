package listing

import (
	"context"
	"sync"
	"time"

	"restaurant-listing-admin/internal/domain"
	"restaurant-listing-admin/internal/models"
	"restaurant-listing-admin/pkg/logging"
	"restaurant-listing-admin/pkg/metrics"
)

var mListingSize = metrics.Default.Gauge("listing_size", "Restaurants in the current snapshot")

// Store keeps the current restaurant listing in memory for the admin screen.
// Refresh replaces the whole snapshot; readers always see a consistent slice.
type Store struct {
	mu          sync.RWMutex
	restaurants []models.Restaurant
	refreshedAt time.Time

	repo   domain.RestaurantRepository
	logger *logging.ComponentLogger
}

// NewStore creates a listing store backed by the given repository.
func NewStore(repo domain.RestaurantRepository, logger *logging.Logger) *Store {
	s := &Store{repo: repo}
	if logger != nil {
		s.logger = logger.WithComponent("listing")
	}
	return s
}

// Refresh reloads the listing from the repository. On failure the previous
// snapshot stays intact so the screen keeps showing the last good data.
func (s *Store) Refresh(ctx context.Context) {
	restaurants, err := s.repo.GetRestaurantsCtx(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("listing refresh failed, keeping previous snapshot",
				logging.Error(err))
		}
		return
	}

	s.mu.Lock()
	s.restaurants = restaurants
	s.refreshedAt = time.Now()
	s.mu.Unlock()
	mListingSize.SetFloat64(float64(len(restaurants)))
}

// Restaurants returns the current snapshot. The returned slice is a copy,
// safe for the caller to range over while refreshes happen.
func (s *Store) Restaurants() []models.Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Restaurant, len(s.restaurants))
	copy(out, s.restaurants)
	return out
}

// Get returns the restaurant with the given id from the current snapshot.
func (s *Store) Get(id int64) (models.Restaurant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.restaurants {
		if r.ID == id {
			return r, true
		}
	}
	return models.Restaurant{}, false
}

// Count returns the number of restaurants in the current snapshot.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.restaurants)
}

// RefreshedAt reports when the snapshot was last replaced.
func (s *Store) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.refreshedAt
}
