package form

import (
	"sync"

	"restaurant-listing-admin/internal/models"
)

// Mode tells whether the restaurant form is hidden, creating, or editing.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

// Buffer holds the in-progress form values. FoodTypes keeps the order the
// user toggled them in, which is also the order they are stored in.
type Buffer struct {
	Name         string   `json:"name"`
	FoodTypes    []string `json:"food_types"`
	Municipality string   `json:"municipality"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"image_url"`
}

// Session is the form state machine for the admin screen. Opening in either
// mode resets the buffer first, so values never leak between create and edit.
type Session struct {
	mu     sync.Mutex
	mode   Mode
	editID int64
	buffer Buffer
}

func NewSession() *Session {
	return &Session{}
}

// OpenCreate switches to create mode with an empty buffer.
func (s *Session) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeCreate
	s.editID = 0
	s.buffer = Buffer{}
}

// OpenEdit switches to edit mode with the buffer prefilled from an existing
// restaurant. The stored food type string is split back into selections.
func (s *Session) OpenEdit(r models.Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeEdit
	s.editID = r.ID
	s.buffer = Buffer{
		Name:      r.Name,
		FoodTypes: SplitFoodTypes(deref(r.FoodType)),
		Location:  r.Location,
	}
	s.buffer.Municipality = deref(r.Municipality)
	s.buffer.Description = deref(r.Description)
	s.buffer.ImageURL = deref(r.ImageURL)
}

// Close hides the form and clears the buffer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeClosed
	s.editID = 0
	s.buffer = Buffer{}
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}

// EditTarget returns the restaurant being edited, if any.
func (s *Session) EditTarget() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editID, s.mode == ModeEdit
}

// ToggleFoodType adds the type if absent and removes it if present.
// Insertion order of the remaining selections is preserved.
func (s *Session) ToggleFoodType(foodType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.buffer.FoodTypes {
		if t == foodType {
			s.buffer.FoodTypes = append(s.buffer.FoodTypes[:i], s.buffer.FoodTypes[i+1:]...)
			return
		}
	}
	s.buffer.FoodTypes = append(s.buffer.FoodTypes, foodType)
}

// HasFoodType reports whether a type is currently selected.
func (s *Session) HasFoodType(foodType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.buffer.FoodTypes {
		if t == foodType {
			return true
		}
	}
	return false
}

func (s *Session) SetName(v string)         { s.setField(func(b *Buffer) { b.Name = v }) }
func (s *Session) SetMunicipality(v string) { s.setField(func(b *Buffer) { b.Municipality = v }) }
func (s *Session) SetLocation(v string)     { s.setField(func(b *Buffer) { b.Location = v }) }
func (s *Session) SetDescription(v string)  { s.setField(func(b *Buffer) { b.Description = v }) }
func (s *Session) SetImageURL(v string)     { s.setField(func(b *Buffer) { b.ImageURL = v }) }

func (s *Session) setField(apply func(*Buffer)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply(&s.buffer)
}

// Buffer returns a copy of the current form values.
func (s *Session) Buffer() Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.buffer
	b.FoodTypes = append([]string(nil), s.buffer.FoodTypes...)
	return b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
