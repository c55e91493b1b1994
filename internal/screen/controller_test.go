package screen

import (
	"context"
	"errors"
	"testing"

	"restaurant-listing-admin/internal/form"
	"restaurant-listing-admin/internal/listing"
	"restaurant-listing-admin/internal/models"
	"restaurant-listing-admin/internal/notify"
	testutil "restaurant-listing-admin/internal/testing"
	errs "restaurant-listing-admin/pkg/errors"
)

func strPtr(s string) *string { return &s }

func newTestController(repo *testutil.MockRepository) (*Controller, *form.Session, *listing.Store) {
	session := form.NewSession()
	store := listing.NewStore(repo, nil)
	ctrl := NewController(repo, store, session, nil, nil, nil)
	return ctrl, session, store
}

func TestSubmitCreate(t *testing.T) {
	repo := testutil.NewMockRepository()
	ctrl, session, store := newTestController(repo)
	n := &testutil.RecordingNotifier{}

	session.OpenCreate()
	session.SetName("Kusina ni Juan")
	session.SetLocation("Dinaga")
	session.SetMunicipality("Naga City")
	session.ToggleFoodType("Filipino")
	session.ToggleFoodType("Casual")

	if err := ctrl.Submit(context.Background(), n); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if repo.InsertCalls != 1 || repo.UpdateCalls != 0 {
		t.Fatalf("calls = (insert %d, update %d), want insert only", repo.InsertCalls, repo.UpdateCalls)
	}
	saved := repo.Restaurants[1]
	if saved.FoodType == nil || *saved.FoodType != "Filipino, Casual" {
		t.Errorf("food type = %v, want joined tags", saved.FoodType)
	}
	if saved.Description != nil || saved.ImageURL != nil {
		t.Error("empty optionals must persist as NULL")
	}
	if len(n.Successes) != 1 || n.Successes[0] != notify.MsgCreated {
		t.Errorf("success toasts = %v", n.Successes)
	}
	if session.Mode() != form.ModeClosed {
		t.Error("session should close after a successful submit")
	}
	if store.Count() != 1 {
		t.Error("listing should refresh after a successful submit")
	}
}

func TestSubmitUpdate(t *testing.T) {
	repo := testutil.NewMockRepository()
	repo.Seed(models.Restaurant{
		ID:       7,
		Name:     "Bigg's Diner",
		FoodType: strPtr("Fast Food"),
		Location: "Peñafrancia",
	})
	ctrl, session, _ := newTestController(repo)
	n := &testutil.RecordingNotifier{}

	session.OpenEdit(repo.Restaurants[7])
	session.SetName("Bigg's Diner Centro")

	if err := ctrl.Submit(context.Background(), n); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if repo.UpdateCalls != 1 || repo.InsertCalls != 0 {
		t.Fatalf("calls = (insert %d, update %d), want update only", repo.InsertCalls, repo.UpdateCalls)
	}
	if got := repo.Restaurants[7].Name; got != "Bigg's Diner Centro" {
		t.Errorf("name = %q", got)
	}
	if len(n.Successes) != 1 || n.Successes[0] != notify.MsgUpdated {
		t.Errorf("success toasts = %v", n.Successes)
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*form.Session)
	}{
		{"missing name", func(s *form.Session) { s.SetLocation("Dinaga") }},
		{"missing location", func(s *form.Session) { s.SetName("Kusina") }},
		{"blank name", func(s *form.Session) { s.SetName("   "); s.SetLocation("Dinaga") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockRepository()
			ctrl, session, _ := newTestController(repo)
			n := &testutil.RecordingNotifier{}

			session.OpenCreate()
			tt.setup(session)

			err := ctrl.Submit(context.Background(), n)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errs.Is(err, errs.ErrValidation) {
				t.Errorf("error kind = %T", err)
			}
			if repo.InsertCalls != 0 {
				t.Error("validation failure must not reach the repository")
			}
			if len(n.Errors) != 1 {
				t.Errorf("error toasts = %v", n.Errors)
			}
		})
	}
}

func TestSubmitFailureKeepsBuffer(t *testing.T) {
	repo := testutil.NewMockRepository()
	repo.InsertErr = errors.New("deadlock")
	ctrl, session, _ := newTestController(repo)
	n := &testutil.RecordingNotifier{}

	session.OpenCreate()
	session.SetName("Kusina ni Juan")
	session.SetLocation("Dinaga")

	if err := ctrl.Submit(context.Background(), n); err == nil {
		t.Fatal("expected insert error")
	}

	// The dialog stays open with the user's input so they can retry.
	if session.Mode() != form.ModeCreate {
		t.Error("session closed on failure")
	}
	if buf := session.Buffer(); buf.Name != "Kusina ni Juan" {
		t.Errorf("buffer lost on failure: %+v", buf)
	}
	if len(n.Errors) != 1 || n.Errors[0] != notify.MsgCreateFailed {
		t.Errorf("error toasts = %v", n.Errors)
	}
}

func TestDeleteDeclinedConfirmation(t *testing.T) {
	repo := testutil.NewMockRepository()
	repo.Seed(models.Restaurant{ID: 3, Name: "Geewan", Location: "Dinaga"})
	ctrl, _, _ := newTestController(repo)
	n := &testutil.RecordingNotifier{}

	if err := ctrl.Delete(context.Background(), 3, func() bool { return false }, n); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if repo.DeleteCalls != 0 {
		t.Error("declined confirmation still reached the repository")
	}
	if len(repo.Restaurants) != 1 {
		t.Error("restaurant disappeared without confirmation")
	}
	if len(n.Successes)+len(n.Errors) != 0 {
		t.Error("declined delete should produce no toasts")
	}
}

func TestDeleteConfirmed(t *testing.T) {
	repo := testutil.NewMockRepository()
	repo.Seed(models.Restaurant{ID: 3, Name: "Geewan", Location: "Dinaga"})
	ctrl, session, store := newTestController(repo)
	store.Refresh(context.Background())
	n := &testutil.RecordingNotifier{}

	session.OpenEdit(repo.Restaurants[3])

	if err := ctrl.Delete(context.Background(), 3, func() bool { return true }, n); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if repo.DeleteCalls != 1 || len(repo.Restaurants) != 0 {
		t.Error("confirmed delete did not remove the restaurant")
	}
	if len(n.Successes) != 1 || n.Successes[0] != notify.MsgDeleted {
		t.Errorf("success toasts = %v", n.Successes)
	}
	if store.Count() != 0 {
		t.Error("listing should refresh after delete")
	}
	// Deleting the restaurant being edited closes its form.
	if session.Mode() != form.ModeClosed {
		t.Error("edit session for the deleted restaurant stayed open")
	}
}

func TestDeleteFailure(t *testing.T) {
	repo := testutil.NewMockRepository()
	repo.Seed(models.Restaurant{ID: 3, Name: "Geewan", Location: "Dinaga"})
	repo.DeleteErr = errors.New("foreign key")
	ctrl, _, _ := newTestController(repo)
	n := &testutil.RecordingNotifier{}

	if err := ctrl.Delete(context.Background(), 3, func() bool { return true }, n); err == nil {
		t.Fatal("expected delete error")
	}
	if len(n.Errors) != 1 || n.Errors[0] != notify.MsgDeleteFailed {
		t.Errorf("error toasts = %v", n.Errors)
	}
}
