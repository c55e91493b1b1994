package repository

import (
	"context"

	"restaurant-listing-admin/internal/domain"
	"restaurant-listing-admin/internal/models"
	"restaurant-listing-admin/pkg/database"
)

// SQLRepository is a thin adapter over pkg/database.DB to satisfy domain repositories.
// It keeps business logic decoupled from the SQL layer.
type SQLRepository struct {
	db *database.DB
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Ensure interface compliance at compile time
var _ domain.Repository = (*SQLRepository)(nil)

func (r *SQLRepository) GetRestaurantsCtx(ctx context.Context) ([]models.Restaurant, error) {
	return r.db.GetRestaurantsCtx(ctx)
}

func (r *SQLRepository) GetRestaurantByIDCtx(ctx context.Context, id int64) (*models.Restaurant, error) {
	return r.db.GetRestaurantByIDCtx(ctx, id)
}

func (r *SQLRepository) GetRestaurantStatsCtx(ctx context.Context) (*models.RestaurantStats, error) {
	return r.db.GetRestaurantStatsCtx(ctx)
}

func (r *SQLRepository) InsertRestaurantCtx(ctx context.Context, in *models.RestaurantInput) (int64, error) {
	return r.db.InsertRestaurantCtx(ctx, in)
}

func (r *SQLRepository) UpdateRestaurantCtx(ctx context.Context, id int64, in *models.RestaurantInput) error {
	return r.db.UpdateRestaurantCtx(ctx, id, in)
}

func (r *SQLRepository) DeleteRestaurantCtx(ctx context.Context, id int64) error {
	return r.db.DeleteRestaurantCtx(ctx, id)
}
