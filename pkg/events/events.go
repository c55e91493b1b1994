package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event is the base interface for all restaurant audit events.
// Keep payloads small, use JSON-friendly fields.
type Event interface {
	Type() string
	RestaurantID() int64
	Timestamp() time.Time
	MarshalData() ([]byte, error)
}

// Base contains common event metadata.
type Base struct {
	Ts  time.Time `json:"ts"`
	RID int64     `json:"restaurant_id"`
}

func (b Base) Timestamp() time.Time { return b.Ts }
func (b Base) RestaurantID() int64  { return b.RID }

// --- Concrete events ---

const (
	TypeCreated = "restaurant.created"
	TypeUpdated = "restaurant.updated"
	TypeDeleted = "restaurant.deleted"
)

// RestaurantCreated is emitted after a successful insert.
type RestaurantCreated struct {
	Base
	Name         string  `json:"name"`
	FoodType     *string `json:"food_type,omitempty"`
	Location     string  `json:"location"`
	Municipality *string `json:"municipality,omitempty"`
}

func (e RestaurantCreated) Type() string                 { return TypeCreated }
func (e RestaurantCreated) MarshalData() ([]byte, error) { return json.Marshal(e) }

// RestaurantUpdated captures the new field values after an edit.
type RestaurantUpdated struct {
	Base
	Name         string  `json:"name"`
	FoodType     *string `json:"food_type,omitempty"`
	Location     string  `json:"location"`
	Municipality *string `json:"municipality,omitempty"`
}

func (e RestaurantUpdated) Type() string                 { return TypeUpdated }
func (e RestaurantUpdated) MarshalData() ([]byte, error) { return json.Marshal(e) }

// RestaurantDeleted records the name at deletion time so the trail stays
// readable after the row is gone.
type RestaurantDeleted struct {
	Base
	Name string `json:"name"`
}

func (e RestaurantDeleted) Type() string                 { return TypeDeleted }
func (e RestaurantDeleted) MarshalData() ([]byte, error) { return json.Marshal(e) }

// EventStore defines persistence and replay.
// Implementations must guarantee ordering per restaurant.
type EventStore interface {
	Append(ctx context.Context, e Event) error
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]StoredEvent, error)
	ReplayRestaurant(ctx context.Context, restaurantID int64) (*RebuiltState, error)
}

// StoredEvent is a durable representation.
// Seq is a monotonic order within the DB (BIGINT AUTO_INCREMENT).
type StoredEvent struct {
	Seq          int64     `json:"seq"`
	RestaurantID int64     `json:"restaurant_id"`
	Type         string    `json:"type"`
	Ts           time.Time `json:"ts"`
	Payload      []byte    `json:"payload"` // original JSON
}

// RebuiltState is the result of replay for a restaurant.
// Intentionally small: last known field values and whether the row still
// exists. UIs can still show full history by listing events.
type RebuiltState struct {
	RestaurantID int64     `json:"restaurant_id"`
	Name         string    `json:"name"`
	FoodType     *string   `json:"food_type,omitempty"`
	Location     string    `json:"location"`
	Municipality *string   `json:"municipality,omitempty"`
	Deleted      bool      `json:"deleted"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Replay applies events in order and rebuilds state.
func Replay(events []StoredEvent) *RebuiltState {
	st := &RebuiltState{}
	for _, se := range events {
		st.RestaurantID = se.RestaurantID
		st.LastUpdated = se.Ts
		switch se.Type {
		case TypeCreated:
			var ev RestaurantCreated
			_ = json.Unmarshal(se.Payload, &ev)
			st.Name = ev.Name
			st.FoodType = ev.FoodType
			st.Location = ev.Location
			st.Municipality = ev.Municipality
			st.Deleted = false
		case TypeUpdated:
			var ev RestaurantUpdated
			_ = json.Unmarshal(se.Payload, &ev)
			st.Name = ev.Name
			st.FoodType = ev.FoodType
			st.Location = ev.Location
			st.Municipality = ev.Municipality
		case TypeDeleted:
			var ev RestaurantDeleted
			_ = json.Unmarshal(se.Payload, &ev)
			if ev.Name != "" {
				st.Name = ev.Name
			}
			st.Deleted = true
		}
	}
	return st
}
