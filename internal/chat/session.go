// Package chat provides the research-assistant chat transcript and its
// WebSocket channel.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Greeting is the agent message every transcript starts with.
const Greeting = "Hello! I am your Research Agent. Ask me about current market demands or trending projects!"

var (
	// ErrBlankMessage is returned for empty or whitespace-only input.
	ErrBlankMessage = errors.New("message is blank")
	// ErrInFlight is returned when a send is attempted while another is outstanding.
	ErrInFlight = errors.New("a message is already being answered")
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Message is one transcript entry.
type Message struct {
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Responder produces the agent reply for a user message. It never fails:
// errors are expressed as apology text.
type Responder interface {
	GenerateAnalysis(ctx context.Context, text string) string
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, text string) string

func (f ResponderFunc) GenerateAnalysis(ctx context.Context, text string) string {
	return f(ctx, text)
}

// Session is an append-only transcript with a single in-flight send.
// Subscribers see every appended message regardless of which transport sent it.
type Session struct {
	mu       sync.Mutex
	messages []Message
	inFlight bool
	now      func() time.Time
	subs     map[int]func(Message)
	nextSub  int
}

// NewSession creates a transcript holding the greeting.
func NewSession() *Session {
	s := &Session{now: time.Now, subs: make(map[int]func(Message))}
	s.messages = []Message{{Sender: SenderAgent, Text: Greeting, At: s.now()}}
	return s
}

// Transcript returns a copy of the messages in append order.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Subscribe registers fn for every message appended after the call and
// returns the transcript up to that point. fn runs on the sender's
// goroutine and must not block. cancel removes the subscription.
func (s *Session) Subscribe(fn func(Message)) (transcript []Message, cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return append([]Message(nil), s.messages...), func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// appendLocked adds m and returns the subscribers to notify. s.mu must be held.
func (s *Session) appendLocked(m Message) []func(Message) {
	s.messages = append(s.messages, m)
	subs := make([]func(Message), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func deliver(m Message, subs []func(Message), notify func(Message)) {
	for _, fn := range subs {
		fn(m)
	}
	if notify != nil {
		notify(m)
	}
}

// InFlight reports whether a send is outstanding.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Send appends the user message, waits for the responder and appends
// exactly one agent message. notify, when non-nil, is called with each
// appended message in order. Rejected sends leave the transcript unchanged.
func (s *Session) Send(ctx context.Context, text string, r Responder, notify func(Message)) ([]Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrBlankMessage
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrInFlight
	}
	s.inFlight = true
	user := Message{Sender: SenderUser, Text: text, At: s.now()}
	subs := s.appendLocked(user)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	deliver(user, subs, notify)

	reply := r.GenerateAnalysis(ctx, text)

	s.mu.Lock()
	agent := Message{Sender: SenderAgent, Text: reply, At: s.now()}
	subs = s.appendLocked(agent)
	out := append([]Message(nil), s.messages...)
	s.mu.Unlock()

	deliver(agent, subs, notify)
	return out, nil
}
