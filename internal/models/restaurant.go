package models

import (
	"time"
)

// Restaurant is a single listing row. Optional columns are pointers so that
// a missing value round-trips as SQL NULL rather than an empty string.
type Restaurant struct {
	ID           int64      `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	FoodType     *string    `json:"food_type" db:"food_type"`
	Location     string     `json:"location" db:"location"`
	Municipality *string    `json:"municipality" db:"municipality"`
	Description  *string    `json:"description" db:"description"`
	ImageURL     *string    `json:"image_url" db:"image_url"`
	CreatedAt    *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at" db:"updated_at"`
}

// RestaurantInput carries the serialized form buffer for an insert or update.
// Nil optionals persist as NULL.
type RestaurantInput struct {
	Name         string  `json:"name"`
	FoodType     *string `json:"food_type"`
	Location     string  `json:"location"`
	Municipality *string `json:"municipality"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"image_url"`
}

// RestaurantStats contains listing statistics for the admin dashboard.
type RestaurantStats struct {
	Total        int `json:"total"`
	WithFoodType int `json:"with_food_type"`
	WithImage    int `json:"with_image"`
}
