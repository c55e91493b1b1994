package testutil

import (
	"context"
	"sort"
	"sync"

	"restaurant-listing-admin/internal/models"
)

// MockRepository implements domain.Repository in memory for tests.
type MockRepository struct {
	Mu          sync.Mutex
	Restaurants map[int64]models.Restaurant
	NextID      int64

	ListErr   error
	GetErr    error
	InsertErr error
	UpdateErr error
	DeleteErr error

	InsertCalls int
	UpdateCalls int
	DeleteCalls int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{Restaurants: map[int64]models.Restaurant{}, NextID: 1}
}

// Seed adds a restaurant directly, bypassing error injection.
func (m *MockRepository) Seed(r models.Restaurant) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if r.ID == 0 {
		r.ID = m.NextID
		m.NextID++
	} else if r.ID >= m.NextID {
		m.NextID = r.ID + 1
	}
	m.Restaurants[r.ID] = r
}

func (m *MockRepository) GetRestaurantsCtx(ctx context.Context) ([]models.Restaurant, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Restaurant, 0, len(m.Restaurants))
	for _, r := range m.Restaurants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockRepository) GetRestaurantByIDCtx(ctx context.Context, id int64) (*models.Restaurant, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	r, ok := m.Restaurants[id]
	if !ok {
		return nil, errNotFound(id)
	}
	return &r, nil
}

func (m *MockRepository) GetRestaurantStatsCtx(ctx context.Context) (*models.RestaurantStats, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	stats := &models.RestaurantStats{Total: len(m.Restaurants)}
	for _, r := range m.Restaurants {
		if r.FoodType != nil && *r.FoodType != "" {
			stats.WithFoodType++
		}
		if r.ImageURL != nil && *r.ImageURL != "" {
			stats.WithImage++
		}
	}
	return stats, nil
}

func (m *MockRepository) InsertRestaurantCtx(ctx context.Context, in *models.RestaurantInput) (int64, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.InsertCalls++
	if m.InsertErr != nil {
		return 0, m.InsertErr
	}
	id := m.NextID
	m.NextID++
	m.Restaurants[id] = models.Restaurant{
		ID:           id,
		Name:         in.Name,
		FoodType:     in.FoodType,
		Location:     in.Location,
		Municipality: in.Municipality,
		Description:  in.Description,
		ImageURL:     in.ImageURL,
	}
	return id, nil
}

func (m *MockRepository) UpdateRestaurantCtx(ctx context.Context, id int64, in *models.RestaurantInput) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	r, ok := m.Restaurants[id]
	if !ok {
		return errNotFound(id)
	}
	r.Name = in.Name
	r.FoodType = in.FoodType
	r.Location = in.Location
	r.Municipality = in.Municipality
	r.Description = in.Description
	r.ImageURL = in.ImageURL
	m.Restaurants[id] = r
	return nil
}

func (m *MockRepository) DeleteRestaurantCtx(ctx context.Context, id int64) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Restaurants, id)
	return nil
}

// MockLookup implements locations.Lookup for tests.
type MockLookup struct {
	Mu              sync.Mutex
	MunicipalityRes []models.Region
	CityRes         []models.Region
	BarangayRes     map[string][]models.Subdivision

	MunicipalityErr error
	CityErr         error
	BarangayErr     map[string]error

	BarangayCalls   []string
	RegionLoadCalls int
	BarangayGate    chan struct{} // when set, Barangays blocks until a receive
}

func NewMockLookup() *MockLookup {
	return &MockLookup{
		BarangayRes: map[string][]models.Subdivision{},
		BarangayErr: map[string]error{},
	}
}

func (m *MockLookup) Municipalities(ctx context.Context, provinceCode string) ([]models.Region, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.RegionLoadCalls++
	if m.MunicipalityErr != nil {
		return nil, m.MunicipalityErr
	}
	return append([]models.Region(nil), m.MunicipalityRes...), nil
}

func (m *MockLookup) Cities(ctx context.Context, provinceCode string) ([]models.Region, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.CityErr != nil {
		return nil, m.CityErr
	}
	return append([]models.Region(nil), m.CityRes...), nil
}

func (m *MockLookup) Barangays(ctx context.Context, regionCode string) ([]models.Subdivision, error) {
	m.Mu.Lock()
	gate := m.BarangayGate
	m.BarangayCalls = append(m.BarangayCalls, regionCode)
	err := m.BarangayErr[regionCode]
	res := append([]models.Subdivision(nil), m.BarangayRes[regionCode]...)
	m.Mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RecordingNotifier captures toast calls for assertions.
type RecordingNotifier struct {
	Mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (n *RecordingNotifier) Success(text string) {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	n.Successes = append(n.Successes, text)
}

func (n *RecordingNotifier) Error(text string) {
	n.Mu.Lock()
	defer n.Mu.Unlock()
	n.Errors = append(n.Errors, text)
}

type notFoundError int64

func errNotFound(id int64) error { return notFoundError(id) }

func (e notFoundError) Error() string { return "restaurant not found" }
