package form

import (
	"reflect"
	"testing"

	"restaurant-listing-admin/internal/models"
)

func strPtr(s string) *string { return &s }

func TestToggleFoodType(t *testing.T) {
	tests := []struct {
		name    string
		toggles []string
		want    []string
	}{
		{
			name:    "adds absent types in toggle order",
			toggles: []string{"Korean", "Filipino", "Cafe"},
			want:    []string{"Korean", "Filipino", "Cafe"},
		},
		{
			name:    "second toggle removes",
			toggles: []string{"Korean", "Filipino", "Korean"},
			want:    []string{"Filipino"},
		},
		{
			name:    "remove keeps order of the rest",
			toggles: []string{"Korean", "Filipino", "Cafe", "Filipino"},
			want:    []string{"Korean", "Cafe"},
		},
		{
			name:    "toggle everything off",
			toggles: []string{"Korean", "Korean"},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.OpenCreate()
			for _, ft := range tt.toggles {
				s.ToggleFoodType(ft)
			}
			got := s.Buffer().FoodTypes
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FoodTypes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionModes(t *testing.T) {
	s := NewSession()

	if s.Mode() != ModeClosed {
		t.Fatalf("new session mode = %v, want closed", s.Mode())
	}
	if _, editing := s.EditTarget(); editing {
		t.Fatal("new session should have no edit target")
	}

	s.OpenCreate()
	if s.Mode() != ModeCreate {
		t.Fatalf("mode after OpenCreate = %v, want create", s.Mode())
	}

	s.SetName("Kusina ni Juan")
	s.ToggleFoodType("Filipino")

	r := models.Restaurant{
		ID:           7,
		Name:         "Bigg's Diner",
		FoodType:     strPtr("Fast Food, Casual"),
		Location:     "Peñafrancia",
		Municipality: strPtr("Naga City"),
	}
	s.OpenEdit(r)

	if s.Mode() != ModeEdit {
		t.Fatalf("mode after OpenEdit = %v, want edit", s.Mode())
	}
	id, editing := s.EditTarget()
	if !editing || id != 7 {
		t.Fatalf("edit target = (%d,%v), want (7,true)", id, editing)
	}

	buf := s.Buffer()
	if buf.Name != "Bigg's Diner" {
		t.Errorf("buffer name = %q, values from create mode leaked", buf.Name)
	}
	if want := []string{"Fast Food", "Casual"}; !reflect.DeepEqual(buf.FoodTypes, want) {
		t.Errorf("buffer food types = %v, want %v", buf.FoodTypes, want)
	}
	if buf.Municipality != "Naga City" || buf.Location != "Peñafrancia" {
		t.Errorf("location prefill = (%q,%q)", buf.Municipality, buf.Location)
	}

	s.Close()
	if s.Mode() != ModeClosed {
		t.Fatalf("mode after Close = %v, want closed", s.Mode())
	}
	if _, editing := s.EditTarget(); editing {
		t.Fatal("edit target should be cleared on Close")
	}
	if buf := s.Buffer(); buf.Name != "" || len(buf.FoodTypes) != 0 {
		t.Fatalf("buffer not cleared on Close: %+v", buf)
	}
}

func TestOpenCreateResetsBuffer(t *testing.T) {
	s := NewSession()
	s.OpenEdit(models.Restaurant{ID: 3, Name: "Old", Location: "Somewhere"})
	s.OpenCreate()

	if buf := s.Buffer(); buf.Name != "" || buf.Location != "" {
		t.Fatalf("OpenCreate kept edit values: %+v", buf)
	}
	if _, editing := s.EditTarget(); editing {
		t.Fatal("OpenCreate kept edit target")
	}
}

func TestSplitJoinFoodTypes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		split []string
	}{
		{"empty", "", nil},
		{"single", "Filipino", []string{"Filipino"}},
		{"multiple", "Sea Food, Fast Food, Cafe", []string{"Sea Food", "Fast Food", "Cafe"}},
		{"stray spaces", " Korean ,  Buffet ", []string{"Korean", "Buffet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitFoodTypes(tt.in)
			if !reflect.DeepEqual(got, tt.split) {
				t.Errorf("SplitFoodTypes(%q) = %v, want %v", tt.in, got, tt.split)
			}
		})
	}

	// Values containing the separator's comma survive a round trip because
	// the catalog never contains ", " inside a name.
	joined := JoinFoodTypes([]string{"Sea Food", "Desserts"})
	if joined != "Sea Food, Desserts" {
		t.Errorf("JoinFoodTypes = %q", joined)
	}
	if got := SplitFoodTypes(joined); !reflect.DeepEqual(got, []string{"Sea Food", "Desserts"}) {
		t.Errorf("round trip = %v", got)
	}
}

func TestLoadFoodTypes(t *testing.T) {
	t.Run("valid yaml", func(t *testing.T) {
		got := LoadFoodTypes([]byte("food_types:\n  - Ramen\n  - Silog\n"))
		if !reflect.DeepEqual(got, []string{"Ramen", "Silog"}) {
			t.Errorf("LoadFoodTypes = %v", got)
		}
	})

	t.Run("broken yaml falls back to defaults", func(t *testing.T) {
		got := LoadFoodTypes([]byte("food_types: ["))
		if len(got) == 0 {
			t.Fatal("expected default catalog")
		}
		if got[0] != "Filipino" {
			t.Errorf("default catalog starts with %q", got[0])
		}
	})

	t.Run("empty list falls back to defaults", func(t *testing.T) {
		got := LoadFoodTypes([]byte("food_types: []"))
		if len(got) == 0 {
			t.Fatal("expected default catalog")
		}
	})
}
