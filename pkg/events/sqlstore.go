package events

import (
	"context"
	"fmt"
	"time"

	"restaurant-listing-admin/internal/constants"
	"restaurant-listing-admin/pkg/database"
)

// SQLEventStore stores events in a SQL table with ordered IDs
// Table schema:
// CREATE TABLE IF NOT EXISTS restaurant_events (
//   id BIGINT AUTO_INCREMENT PRIMARY KEY,
//   restaurant_id BIGINT NOT NULL,
//   type VARCHAR(64) NOT NULL,
//   at DATETIME(6) NOT NULL,
//   data JSON NOT NULL,
//   KEY idx_restaurant_id (restaurant_id),
//   KEY idx_restaurant_time (restaurant_id, id)
// );
// NOTE: JSON may be emulated as LONGTEXT on older MySQL variants.

type SQLEventStore struct {
	db *database.DB
}

func NewSQLEventStore(db *database.DB) *SQLEventStore {
	s := &SQLEventStore{db: db}
	if err := s.ensureTable(); err != nil {
		// Best effort; don't crash app start
		fmt.Printf("[events] ensure table error: %v\n", err)
	}
	return s
}

func (s *SQLEventStore) ensureTable() error {
	qry := `CREATE TABLE IF NOT EXISTS restaurant_events (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		restaurant_id BIGINT NOT NULL,
		type VARCHAR(64) NOT NULL,
		at DATETIME(6) NOT NULL,
		data JSON NOT NULL,
		KEY idx_restaurant_id (restaurant_id),
		KEY idx_restaurant_time (restaurant_id, id)
	)`
	_, err := s.db.Conn().Exec(qry)
	return err
}

func (s *SQLEventStore) Append(ctx context.Context, e Event) error {
	ctx, cancel := context.WithTimeout(ctx, constants.EventsSQLTimeoutDefault)
	defer cancel()

	payload, err := e.MarshalData()
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	at := e.Timestamp()
	if at.IsZero() {
		at = time.Now()
	}

	qry := `INSERT INTO restaurant_events (restaurant_id, type, at, data) VALUES (?,?,?,?)`
	if _, err := s.db.Conn().ExecContext(ctx, qry, e.RestaurantID(), e.Type(), at, string(payload)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLEventStore) ListByRestaurant(ctx context.Context, restaurantID int64) ([]StoredEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.EventsSQLTimeoutDefault)
	defer cancel()

	rows, err := s.db.Conn().QueryContext(ctx, `SELECT id, restaurant_id, type, at, data FROM restaurant_events WHERE restaurant_id = ? ORDER BY id ASC`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var se StoredEvent
		var dataStr string
		if err := rows.Scan(&se.Seq, &se.RestaurantID, &se.Type, &se.Ts, &dataStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		se.Payload = []byte(dataStr)
		out = append(out, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (s *SQLEventStore) ReplayRestaurant(ctx context.Context, restaurantID int64) (*RebuiltState, error) {
	events, err := s.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return Replay(events), nil
}
