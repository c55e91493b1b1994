package domain

import (
	"context"

	"restaurant-listing-admin/internal/models"
)

// RestaurantRepository defines data access for restaurant listings.
// List order is by name ascending; mutations are last write wins.
type RestaurantRepository interface {
	GetRestaurantsCtx(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurantByIDCtx(ctx context.Context, id int64) (*models.Restaurant, error)
	GetRestaurantStatsCtx(ctx context.Context) (*models.RestaurantStats, error)

	InsertRestaurantCtx(ctx context.Context, in *models.RestaurantInput) (int64, error)
	UpdateRestaurantCtx(ctx context.Context, id int64, in *models.RestaurantInput) error
	DeleteRestaurantCtx(ctx context.Context, id int64) error
}

// Repository aggregates the repos commonly required by services.
type Repository interface {
	RestaurantRepository
}
