package notify

import (
	"sync"

	"restaurant-listing-admin/pkg/logging"
)

// Level classifies a toast message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Message is a single user-facing toast.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Notifier receives user-facing outcome messages.
type Notifier interface {
	Success(text string)
	Error(text string)
}

// Message catalog for the admin screen.
const (
	MsgCreated       = "Restaurant added"
	MsgCreateFailed  = "Failed to add restaurant"
	MsgUpdated       = "Restaurant updated"
	MsgUpdateFailed  = "Failed to update restaurant"
	MsgDeleted       = "Restaurant deleted"
	MsgDeleteFailed  = "Failed to delete restaurant"
	MsgRegionsFailed = "Failed to load municipalities and cities"
	MsgBrgyFailed    = "Failed to load barangays"
	MsgBadLookupData = "Unexpected data from location lookup"
)

// Recorder collects messages for one request so the handler can hand them
// back to the page's toast widget.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(text string) { r.record(LevelSuccess, text) }
func (r *Recorder) Error(text string)   { r.record(LevelError, text) }

func (r *Recorder) record(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, Message{Level: level, Text: text})
}

// Messages returns everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Logging wraps a Notifier and traces error toasts to the application log.
type Logging struct {
	next   Notifier
	logger *logging.ComponentLogger
}

func WithLogging(next Notifier, logger *logging.Logger) *Logging {
	l := &Logging{next: next}
	if logger != nil {
		l.logger = logger.WithComponent("notify")
	}
	return l
}

func (l *Logging) Success(text string) {
	l.next.Success(text)
}

func (l *Logging) Error(text string) {
	if l.logger != nil {
		l.logger.Warn("error shown to user", logging.String("text", text))
	}
	l.next.Error(text)
}
