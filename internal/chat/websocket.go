package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Inbound is a message received from the browser.
type Inbound struct {
	Text string `json:"text"`
}

// Outbound is a frame pushed to the browser: either an appended message or
// a rejection.
type Outbound struct {
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// SessionLookup resolves the designer session a connection attaches to.
type SessionLookup func(id string) (*Session, bool)

// WebSocketHandler serves the chat widget over a WebSocket. A connection
// with a ?session= query joins that session's transcript; otherwise it gets
// a private transcript.
type WebSocketHandler struct {
	responder      Responder
	lookup         SessionLookup
	originPatterns []string
	writeTimeout   time.Duration
}

// NewWebSocketHandler creates the handler. lookup may be nil.
func NewWebSocketHandler(responder Responder, lookup SessionLookup, originPatterns []string) *WebSocketHandler {
	return &WebSocketHandler{
		responder:      responder,
		lookup:         lookup,
		originPatterns: originPatterns,
		writeTimeout:   10 * time.Second,
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := NewSession()
	if id := r.URL.Query().Get("session"); id != "" {
		if h.lookup == nil {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		found, ok := h.lookup(id)
		if !ok {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		sess = found
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	// All writes happen on this goroutine, in append order.
	updates := make(chan Message, updateBuffer)
	history, cancel := sess.Subscribe(func(m Message) {
		select {
		case updates <- m:
		default:
			slog.Warn("chat subscriber lagging, message dropped", "sender", m.Sender)
		}
	})
	defer cancel()

	for _, m := range history {
		if err := h.write(ctx, conn, Outbound{Message: &m}); err != nil {
			return
		}
	}

	rejections := make(chan string, 1)
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		h.readLoop(ctx, conn, sess, rejections)
	}()

	for {
		select {
		case m := <-updates:
			if err := h.write(ctx, conn, Outbound{Message: &m}); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		case msg := <-rejections:
			if err := h.write(ctx, conn, Outbound{Error: msg}); err != nil {
				return
			}
		case <-readDone:
			return
		}
	}
}

// updateBuffer bounds the messages queued for a slow connection.
const updateBuffer = 64

func (h *WebSocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *Session, rejections chan<- string) {
	for {
		var in Inbound
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				slog.Debug("websocket read ended", "error", err)
			}
			return
		}

		if _, err := sess.Send(ctx, in.Text, h.responder, nil); err != nil {
			select {
			case rejections <- err.Error():
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *WebSocketHandler) write(ctx context.Context, conn *websocket.Conn, out Outbound) error {
	ctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, out)
}
