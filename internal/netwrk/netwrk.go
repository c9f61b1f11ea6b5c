// Package netwrk bridges websocket connections to the session engine.
// Connections arrive already authenticated; identity rides on the request
// context the auth layer established. The hub doubles as the engine's
// connection directory and presence broadcaster.
package netwrk

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/WoKonings/ft-transcendence/internal/game"
	"github.com/WoKonings/ft-transcendence/internal/rating"
)

const (
	outboxSize   = 64
	writeTimeout = 5 * time.Second
)

// RatingSource looks up a player's current rating for the join-time
// snapshot. Optional; unknown players start at the default Elo.
type RatingSource interface {
	Rating(ctx context.Context, playerID int64) (int, error)
}

// Hub tracks every live connection keyed by player identity.
type Hub struct {
	log      *slog.Logger
	engine   *game.Engine
	ratings  RatingSource
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[int64]*client
	byName  map[string]*client
}

// NewHub builds a hub with no engine bound yet: the hub is the engine's
// directory and status collaborator, so it has to exist first. Bind wires
// the engine before any connection is served.
func NewHub(log *slog.Logger, ratings RatingSource) *Hub {
	return &Hub{
		log:     log,
		ratings: ratings,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[int64]*client),
		byName:  make(map[string]*client),
	}
}

// Bind attaches the session engine commands are dispatched to.
func (h *Hub) Bind(engine *game.Engine) { h.engine = engine }

// client is one player's connection and its outbound pump.
type client struct {
	player *game.Player
	conn   *websocket.Conn
	out    chan game.Event
	done   chan struct{}
	once   sync.Once
}

// Send queues an event without blocking. When the buffer is full the
// oldest event is dropped; a stalled client loses frames, not the loop.
func (c *client) Send(ev game.Event) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.out <- ev:
	default:
		select {
		case <-c.out:
		default:
		}
		select {
		case c.out <- ev:
		default:
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// Resolve implements game.Directory over the connected players.
func (h *Hub) Resolve(name string) (*game.Player, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.byName[name]
	if !ok {
		return nil, false
	}
	return c.player, true
}

// PlayerStatus implements game.Status by broadcasting presence changes to
// every connection.
func (h *Hub) PlayerStatus(playerID int64, inQueue, inGame bool) {
	ev := game.Event{Type: "userStatusUpdate", Data: game.UserStatus{
		ID:      playerID,
		InQueue: inQueue,
		InGame:  inGame,
	}}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.Send(ev)
	}
}

// ServeHTTP upgrades the connection and runs its read loop. Identity query
// parameters are trusted: an external guard authenticated the request and
// bounds payload sizes before it reaches this engine.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	username := r.URL.Query().Get("username")
	if err != nil || playerID <= 0 || username == "" {
		http.Error(w, "missing identity", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade", slog.Any("error", err))
		return
	}

	elo := rating.DefaultElo
	if h.ratings != nil {
		if current, err := h.ratings.Rating(r.Context(), playerID); err == nil {
			elo = current
		}
	}

	c := &client{
		conn: conn,
		out:  make(chan game.Event, outboxSize),
		done: make(chan struct{}),
	}
	c.player = &game.Player{ID: playerID, Name: username, Rating: elo, Outbox: c}

	h.register(c)
	defer h.disconnect(c)

	c.Send(game.Event{Type: "connected", Data: game.Notice{Message: "welcome to transcendence"}})

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// A reconnect replaces the previous connection for the same identity.
	if old, ok := h.clients[c.player.ID]; ok {
		old.close()
	}
	h.clients[c.player.ID] = c
	h.byName[c.player.Name] = c
	h.log.Info("player connected",
		slog.Int64("player", c.player.ID), slog.String("name", c.player.Name))
}

// disconnect surfaces a dropped connection to the engine as a leave event;
// the engine does not run its own heartbeats.
func (h *Hub) disconnect(c *client) {
	c.close()
	h.mu.Lock()
	registered := h.clients[c.player.ID] == c
	if registered {
		delete(h.clients, c.player.ID)
		delete(h.byName, c.player.Name)
	}
	h.mu.Unlock()
	if !registered {
		// A reconnect already replaced this connection; leaving now would
		// tear down whatever session the new connection has joined since.
		return
	}
	h.engine.LeaveMatch(c.player.ID)
	h.log.Info("player disconnected", slog.Int64("player", c.player.ID))
}

func (h *Hub) readPump(c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.log.Debug("invalid command envelope",
				slog.Int64("player", c.player.ID), slog.Any("error", err))
			c.Send(game.ErrorEvent("invalid command"))
			continue
		}
		h.dispatch(c, cmd)
	}
}

func (h *Hub) writePump(c *client) {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.close()
				return
			}
		}
	}
}

func (h *Hub) dispatch(c *client, cmd Command) {
	switch cmd.Type {
	case "joinQueue":
		var jq JoinQueue
		if cmd.Data != nil {
			if err := json.Unmarshal(cmd.Data, &jq); err != nil {
				c.Send(game.ErrorEvent("invalid joinQueue payload"))
				return
			}
		}
		// Joining while already seated is an expected no-op, not an error.
		_ = h.engine.JoinQueue(c.player, jq.Private, jq.Variant)

	case "leaveMatch":
		h.engine.LeaveMatch(c.player.ID)

	case "movePaddle":
		var mv Move
		if err := json.Unmarshal(cmd.Data, &mv); err != nil {
			c.Send(game.ErrorEvent("invalid movePaddle payload"))
			return
		}
		h.engine.MovePaddle(c.player.ID, mv.Delta)

	case "paddlePos":
		var pp PaddlePos
		if err := json.Unmarshal(cmd.Data, &pp); err != nil {
			c.Send(game.ErrorEvent("invalid paddlePos payload"))
			return
		}
		h.engine.SetPaddleY(c.player.ID, pp.Y)

	case "sendInvite":
		var inv Invite
		if err := json.Unmarshal(cmd.Data, &inv); err != nil || inv.Target == "" {
			c.Send(game.ErrorEvent("invite needs a target"))
			return
		}
		if err := h.engine.SendInvite(c.player, inv.Target); err != nil {
			c.Send(game.ErrorEvent("invite could not be delivered"))
		}

	case "acceptInvite":
		var acc Accept
		if err := json.Unmarshal(cmd.Data, &acc); err != nil || acc.SessionID == "" {
			c.Send(game.ErrorEvent("accept needs a session id"))
			return
		}
		_ = h.engine.AcceptInvite(c.player, acc.SessionID)

	default:
		h.log.Debug("unhandled command",
			slog.String("type", cmd.Type), slog.Int64("player", c.player.ID))
	}
}
