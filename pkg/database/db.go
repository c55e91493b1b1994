package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"restaurant-listing-admin/internal/constants"
	"restaurant-listing-admin/internal/models"
	"restaurant-listing-admin/pkg/config"
	errs "restaurant-listing-admin/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
)

type DB struct {
	conn         *sql.DB
	stmts        map[string]*sql.Stmt
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(10 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{
		conn:         conn,
		stmts:        make(map[string]*sql.Stmt),
		readTimeout:  constants.DBReadTimeoutDefault,
		writeTimeout: constants.DBWriteTimeoutDefault,
	}

	if err := db.prepareStatements(); err != nil {
		return nil, errs.NewDB("database.New", "failed to prepare statements", err)
	}

	return db, nil
}

// NewWithConfig creates a database connection with custom configuration settings
func NewWithConfig(databaseURL string, cfg *config.Config) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, err
	}

	// Use configuration values for connection pool settings
	conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	conn.SetMaxIdleConns(cfg.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Minute)
	conn.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTime) * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	rt := cfg.DBReadTimeout
	if rt == 0 {
		rt = constants.DBReadTimeoutDefault
	}
	wt := cfg.DBWriteTimeout
	if wt == 0 {
		wt = constants.DBWriteTimeoutDefault
	}

	db := &DB{
		conn:         conn,
		stmts:        make(map[string]*sql.Stmt),
		readTimeout:  rt,
		writeTimeout: wt,
	}

	if err := db.prepareStatements(); err != nil {
		return nil, errs.NewDB("database.NewWithConfig", "failed to prepare statements", err)
	}

	return db, nil
}

// prepareStatements prepares frequently used SQL statements
func (db *DB) prepareStatements() error {
	statements := map[string]string{
		"insertRestaurant": `INSERT INTO restaurants
                            (name, food_type, location, municipality, description, image_url, created_at, updated_at)
                            VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		"updateRestaurant": `UPDATE restaurants SET
                            name = ?, food_type = ?, location = ?, municipality = ?,
                            description = ?, image_url = ?, updated_at = NOW()
                            WHERE id = ?`,
		"deleteRestaurant": `DELETE FROM restaurants WHERE id = ?`,
	}

	for name, query := range statements {
		stmt, err := db.conn.Prepare(query)
		if err != nil {
			return errs.NewDB("database.prepareStatements", fmt.Sprintf("failed to prepare statement %s", name), err)
		}
		db.stmts[name] = stmt
	}

	return nil
}

// Close closes database connection and prepared statements
func (db *DB) Close() error {
	for _, stmt := range db.stmts {
		stmt.Close()
	}
	return db.conn.Close()
}

// Ping verifies the connection is still alive.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// withReadTimeout creates a context with standard read timeout.
func (db *DB) withReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, db.readTimeout)
}

// withWriteTimeout creates a context with standard write timeout.
func (db *DB) withWriteTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, db.writeTimeout)
}

const restaurantColumns = `id, name, food_type, location, municipality, description, image_url, created_at, updated_at`

// GetRestaurantsCtx retrieves all restaurants ordered by name ascending.
func (db *DB) GetRestaurantsCtx(ctx context.Context) ([]models.Restaurant, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY name ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, errs.NewDB("database.GetRestaurantsCtx", "failed to query restaurants", err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		r, err := db.scanRestaurantRow(rows)
		if err != nil {
			return nil, errs.NewDB("database.GetRestaurantsCtx", "failed to scan restaurant row", err)
		}
		restaurants = append(restaurants, *r)
	}

	if err = rows.Err(); err != nil {
		return nil, errs.NewDB("database.GetRestaurantsCtx", "row iteration error", err)
	}

	return restaurants, nil
}

// scanRestaurantRow scans a complete restaurant row into a Restaurant struct
func (db *DB) scanRestaurantRow(rows *sql.Rows) (*models.Restaurant, error) {
	var r models.Restaurant
	var foodType, municipality, description, imageURL sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := rows.Scan(
		&r.ID, &r.Name, &foodType, &r.Location, &municipality,
		&description, &imageURL, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if foodType.Valid {
		r.FoodType = &foodType.String
	}
	if municipality.Valid {
		r.Municipality = &municipality.String
	}
	if description.Valid {
		r.Description = &description.String
	}
	if imageURL.Valid {
		r.ImageURL = &imageURL.String
	}
	if createdAt.Valid {
		r.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		r.UpdatedAt = &updatedAt.Time
	}

	return &r, nil
}

// GetRestaurantByIDCtx returns a single restaurant by its id.
func (db *DB) GetRestaurantByIDCtx(ctx context.Context, id int64) (*models.Restaurant, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = ?`

	rows, err := db.conn.QueryContext(ctx, query, id)
	if err != nil {
		return nil, errs.NewDB("database.GetRestaurantByIDCtx", "failed to query restaurant", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errs.NewDB("database.GetRestaurantByIDCtx", "row iteration error", err)
		}
		return nil, errs.NewDB("database.GetRestaurantByIDCtx", fmt.Sprintf("restaurant %d not found", id), sql.ErrNoRows)
	}

	r, err := db.scanRestaurantRow(rows)
	if err != nil {
		return nil, errs.NewDB("database.GetRestaurantByIDCtx", "failed to scan restaurant row", err)
	}
	return r, nil
}

// InsertRestaurantCtx inserts a new restaurant and returns its assigned id.
func (db *DB) InsertRestaurantCtx(ctx context.Context, in *models.RestaurantInput) (int64, error) {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	stmt := db.stmts["insertRestaurant"]
	res, err := stmt.ExecContext(ctx, in.Name, in.FoodType, in.Location, in.Municipality, in.Description, in.ImageURL)
	if err != nil {
		return 0, errs.NewDB("database.InsertRestaurantCtx", "failed to insert restaurant", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.NewDB("database.InsertRestaurantCtx", "failed to get last insert ID", err)
	}
	return id, nil
}

// UpdateRestaurantCtx overwrites an existing restaurant row. Last write wins.
func (db *DB) UpdateRestaurantCtx(ctx context.Context, id int64, in *models.RestaurantInput) error {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	stmt := db.stmts["updateRestaurant"]
	if _, err := stmt.ExecContext(ctx, in.Name, in.FoodType, in.Location, in.Municipality, in.Description, in.ImageURL, id); err != nil {
		return errs.NewDB("database.UpdateRestaurantCtx", "failed to update restaurant", err)
	}
	return nil
}

// DeleteRestaurantCtx removes a restaurant row.
func (db *DB) DeleteRestaurantCtx(ctx context.Context, id int64) error {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	stmt := db.stmts["deleteRestaurant"]
	if _, err := stmt.ExecContext(ctx, id); err != nil {
		return errs.NewDB("database.DeleteRestaurantCtx", "failed to delete restaurant", err)
	}
	return nil
}

// Conn exposes the underlying *sql.DB for infrastructure code such as the
// event store. Handlers and stores should use the typed methods instead.
func (db *DB) Conn() *sql.DB { return db.conn }

// GetRestaurantStatsCtx returns listing statistics for the dashboard header.
func (db *DB) GetRestaurantStatsCtx(ctx context.Context) (*models.RestaurantStats, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	query := `SELECT
        COUNT(*) as total,
        COUNT(food_type) as with_food_type,
        COUNT(image_url) as with_image
        FROM restaurants`

	var stats models.RestaurantStats
	err := db.conn.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.WithFoodType, &stats.WithImage)
	if err != nil {
		return nil, errs.NewDB("database.GetRestaurantStatsCtx", "failed to get restaurant stats", err)
	}

	return &stats, nil
}
