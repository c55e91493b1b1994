package events

import (
	"testing"
	"time"
)

// The SQL store must keep satisfying the interface main.go wires it as.
var _ EventStore = (*SQLEventStore)(nil)

func strPtr(s string) *string { return &s }

func mustPayload(t *testing.T, e Event) []byte {
	t.Helper()
	b, err := e.MarshalData()
	if err != nil {
		t.Fatalf("marshal %s: %v", e.Type(), err)
	}
	return b
}

func TestReplayRebuildsLastState(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	created := RestaurantCreated{
		Base:         Base{Ts: t0, RID: 5},
		Name:         "Geewan",
		FoodType:     strPtr("Filipino"),
		Location:     "Dinaga",
		Municipality: strPtr("Naga City"),
	}
	updated := RestaurantUpdated{
		Base:     Base{Ts: t0.Add(time.Hour), RID: 5},
		Name:     "Geewan Centro",
		FoodType: strPtr("Filipino, Buffet"),
		Location: "Dinaga",
	}

	stored := []StoredEvent{
		{Seq: 1, RestaurantID: 5, Type: created.Type(), Ts: created.Ts, Payload: mustPayload(t, created)},
		{Seq: 2, RestaurantID: 5, Type: updated.Type(), Ts: updated.Ts, Payload: mustPayload(t, updated)},
	}

	st := Replay(stored)
	if st.RestaurantID != 5 {
		t.Errorf("restaurant id = %d", st.RestaurantID)
	}
	if st.Name != "Geewan Centro" {
		t.Errorf("name = %q, want the updated value", st.Name)
	}
	if st.FoodType == nil || *st.FoodType != "Filipino, Buffet" {
		t.Errorf("food type = %v", st.FoodType)
	}
	if st.Municipality != nil {
		t.Errorf("municipality = %v, update cleared it", st.Municipality)
	}
	if st.Deleted {
		t.Error("state marked deleted without a delete event")
	}
	if !st.LastUpdated.Equal(updated.Ts) {
		t.Errorf("last updated = %v", st.LastUpdated)
	}
}

func TestReplayDelete(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	created := RestaurantCreated{Base: Base{Ts: t0, RID: 9}, Name: "Red Platter", Location: "Concepcion"}
	deleted := RestaurantDeleted{Base: Base{Ts: t0.Add(time.Minute), RID: 9}, Name: "Red Platter"}

	stored := []StoredEvent{
		{Seq: 1, RestaurantID: 9, Type: created.Type(), Ts: created.Ts, Payload: mustPayload(t, created)},
		{Seq: 2, RestaurantID: 9, Type: deleted.Type(), Ts: deleted.Ts, Payload: mustPayload(t, deleted)},
	}

	st := Replay(stored)
	if !st.Deleted {
		t.Error("delete event not applied")
	}
	if st.Name != "Red Platter" {
		t.Errorf("name = %q", st.Name)
	}
}

func TestReplayEmpty(t *testing.T) {
	st := Replay(nil)
	if st == nil {
		t.Fatal("Replay(nil) returned nil")
	}
	if st.RestaurantID != 0 || st.Deleted {
		t.Errorf("zero state = %+v", st)
	}
}
