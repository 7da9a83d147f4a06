// Package matrix connects Vaani to Matrix chat rooms: text messages in the
// configured rooms become commands, and replies go back as notices.
package matrix

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/bdobrica/Vaani/common/redact"
	"github.com/bdobrica/Vaani/internal/vaani/metrics"
)

const (
	backoffMin = 2 * time.Second
	backoffMax = 5 * time.Minute
)

// Config holds Matrix client configuration.
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string
	// Rooms are the room IDs Vaani listens in. Messages elsewhere are ignored.
	Rooms []string
	// AllowedSenders restricts who may issue commands. Empty allows anyone
	// present in Rooms.
	AllowedSenders []string
	// DB persists the sync position. When nil history is replayed on every
	// restart.
	DB *sql.DB
}

// Message is an accepted incoming text message.
type Message struct {
	Room    string
	Sender  string
	EventID string
	Text    string
}

// Handler processes a message and returns the reply to post, if any.
type Handler func(ctx context.Context, msg Message) string

// Client wraps a mautrix client.
type Client struct {
	client  *mautrix.Client
	cfg     Config
	rooms   map[string]struct{}
	senders map[string]struct{}

	handlerMu sync.RWMutex
	handler   Handler
}

// New creates a Client. It does not contact the homeserver.
func New(cfg Config) (*Client, error) {
	if cfg.Homeserver == "" || cfg.UserID == "" || cfg.AccessToken == "" {
		return nil, errors.New("matrix: homeserver, user ID and access token are required")
	}
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("matrix: create client: %w", err)
	}

	c := &Client{
		client:  client,
		cfg:     cfg,
		rooms:   toSet(cfg.Rooms),
		senders: toSet(cfg.AllowedSenders),
	}
	if cfg.DB != nil {
		client.Store = NewSyncStore(cfg.DB)
	} else {
		slog.Warn("matrix: no database configured, room history will replay on restart")
	}
	return c, nil
}

// SetHandler sets the function incoming messages are passed to.
func (c *Client) SetHandler(h Handler) {
	c.handlerMu.Lock()
	c.handler = h
	c.handlerMu.Unlock()
}

// Run joins the configured rooms and syncs until ctx is cancelled,
// reconnecting with exponential backoff when the sync loop fails.
func (c *Client) Run(ctx context.Context) error {
	syncer, ok := c.client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return errors.New("matrix: unexpected syncer type")
	}
	syncer.OnEventType(event.EventMessage, c.onMessage)

	for _, room := range c.cfg.Rooms {
		if err := c.joinRoom(ctx, id.RoomID(room)); err != nil {
			return fmt.Errorf("matrix: join room %s: %w", room, err)
		}
	}
	slog.Info("matrix: syncing", "user", c.cfg.UserID, "rooms", len(c.cfg.Rooms))

	backoff := backoffMin
	for {
		err := c.client.SyncWithContext(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			backoff = backoffMin
			continue
		}
		slog.Error("matrix: sync stopped, reconnecting",
			"err", redact.String(err.Error(), c.cfg.AccessToken), "backoff", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, backoffMax)
	}
}

// SendNotice posts a notice to room.
func (c *Client) SendNotice(ctx context.Context, room, text string) error {
	content := event.MessageEventContent{MsgType: event.MsgNotice, Body: text}
	if _, err := c.client.SendMessageEvent(ctx, id.RoomID(room), event.EventMessage, &content); err != nil {
		return fmt.Errorf("matrix: send notice: %w", err)
	}
	return nil
}

// Reply posts text as a notice replying to eventID.
func (c *Client) Reply(ctx context.Context, room, eventID, text string) error {
	content := event.MessageEventContent{
		MsgType: event.MsgNotice,
		Body:    text,
		RelatesTo: &event.RelatesTo{
			InReplyTo: &event.InReplyTo{EventID: id.EventID(eventID)},
		},
	}
	if _, err := c.client.SendMessageEvent(ctx, id.RoomID(room), event.EventMessage, &content); err != nil {
		return fmt.Errorf("matrix: send reply: %w", err)
	}
	return nil
}

// Accepts reports whether a message from sender in room should be handled.
func (c *Client) Accepts(room, sender string) bool {
	if sender == c.cfg.UserID {
		return false
	}
	if _, ok := c.rooms[room]; !ok {
		return false
	}
	if len(c.senders) == 0 {
		return true
	}
	_, ok := c.senders[sender]
	return ok
}

func (c *Client) onMessage(ctx context.Context, evt *event.Event) {
	msg := evt.Content.AsMessage()
	if msg == nil || msg.MsgType != event.MsgText {
		return
	}
	if !c.Accepts(evt.RoomID.String(), evt.Sender.String()) {
		return
	}

	c.handlerMu.RLock()
	h := c.handler
	c.handlerMu.RUnlock()
	if h == nil {
		return
	}

	metrics.MatrixMessagesTotal.Inc()
	reply := h(ctx, Message{
		Room:    evt.RoomID.String(),
		Sender:  evt.Sender.String(),
		EventID: evt.ID.String(),
		Text:    msg.Body,
	})
	if reply == "" {
		return
	}
	if err := c.Reply(ctx, evt.RoomID.String(), evt.ID.String(), reply); err != nil {
		slog.Error("matrix: reply failed", "room", evt.RoomID, "err", err)
	}
}

func (c *Client) joinRoom(ctx context.Context, room id.RoomID) error {
	if _, err := c.client.JoinRoomByID(ctx, room); err != nil {
		// Homeservers answer M_FORBIDDEN when already joined.
		if errors.Is(err, mautrix.MForbidden) {
			slog.Warn("matrix: join refused, assuming membership", "room", room)
			return nil
		}
		return err
	}
	return nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}
