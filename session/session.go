// Package session tracks conversation state: one session per
// (app, user, id) triple, holding the ordered event history a runner
// appends to as it executes.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BaSui01/agentbridge/llm"
)

var (
	// ErrNotFound is returned when the requested session does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrAlreadyExists is returned when creating a session whose id is taken.
	ErrAlreadyExists = errors.New("session: already exists")

	// ErrServiceClosed is returned by operations on a closed service.
	ErrServiceClosed = errors.New("session: service closed")
)

// Event is one step of a run: a user message, a model reply carrying
// function calls, a tool result, or the final response.
type Event struct {
	ID        string      `json:"id"`
	Author    string      `json:"author"`
	Timestamp time.Time   `json:"timestamp"`
	Message   llm.Message `json:"message"`

	// Final marks the closing model response of a run.
	Final bool `json:"final,omitempty"`

	// Err carries a run failure to stream consumers. Error events are
	// not persisted in the session history.
	Err error `json:"-"`
}

// NewEvent stamps a message with an id and the current time.
func NewEvent(author string, msg llm.Message) Event {
	return Event{
		ID:        uuid.NewString(),
		Author:    author,
		Timestamp: time.Now().UTC(),
		Message:   msg,
	}
}

// FunctionCalls returns the tool invocations the model requested in
// this event, if any.
func (e Event) FunctionCalls() []llm.ToolCall {
	return e.Message.ToolCalls
}

// FunctionResponses reports whether this event carries a tool result.
func (e Event) FunctionResponses() bool {
	return e.Message.Role == llm.RoleTool
}

// IsFinalResponse reports whether this event is the run's final model
// response: assistant content with no pending tool calls.
func (e Event) IsFinalResponse() bool {
	return e.Final
}

// Session is a single conversation. Events are ordered by append time.
type Session struct {
	ID        string    `json:"id"`
	AppName   string    `json:"app_name"`
	UserID    string    `json:"user_id"`
	Events    []Event   `json:"events"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Messages flattens the event history into the message list a
// completion request needs.
func (s *Session) Messages() []llm.Message {
	msgs := make([]llm.Message, 0, len(s.Events))
	for _, ev := range s.Events {
		msgs = append(msgs, ev.Message)
	}
	return msgs
}

// Service stores and retrieves sessions.
type Service interface {
	// Create makes a new session. An empty sessionID gets a generated one.
	Create(ctx context.Context, appName, userID, sessionID string) (*Session, error)

	// Get returns a copy of the session, or ErrNotFound.
	Get(ctx context.Context, appName, userID, sessionID string) (*Session, error)

	// AppendEvent adds an event to the session's history.
	AppendEvent(ctx context.Context, appName, userID, sessionID string, event Event) error

	// List returns the session ids for one (app, user) pair.
	List(ctx context.Context, appName, userID string) ([]string, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, appName, userID, sessionID string) error

	// Close releases the service. Further calls fail with ErrServiceClosed.
	Close() error
}
