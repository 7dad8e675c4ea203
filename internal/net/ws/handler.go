package ws

import (
	"context"
	"log"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	server "merge-and-wander/server"
	"merge-and-wander/server/internal/game"
	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/net/proto"
)

// HandlerConfig carries the optional collaborators for a Handler.
type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades websocket connections and bridges them onto the
// session: inbound frames become stimuli, the session's drawing calls
// flow back as outbound frames. One client renders at a time; a newly
// announced client replaces the previous one.
type Handler struct {
	session  *server.Session
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	active *client
}

// NewHandler builds a websocket bridge for the given session.
func NewHandler(session *server.Session, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		session: session,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

// Handle runs one websocket connection until it drops. The connection
// becomes the rendering surface only after its hello frame; stimuli are
// accepted regardless.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	c := newClient(conn, r.RemoteAddr, h.logger)
	defer h.release(c)

	ctx := r.Context()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", c.name, err)
			continue
		}

		switch msg.Type {
		case proto.TypeHello:
			rules := h.session.Rules()
			c.send(proto.EncodeRules(proto.Rules{
				CellSizeDegrees:   rules.CellSizeDegrees,
				InteractionRadius: rules.InteractionRadius,
				WinTarget:         rules.WinTarget,
			}))
			c.won.Store(h.session.State().Won)
			name := c.name
			if msg.Client != "" {
				name = msg.Client
			}
			h.adopt(ctx, name, c)
		case proto.TypeViewport:
			h.session.HandleViewportSettled(ctx, grid.Bounds{
				South: msg.South,
				West:  msg.West,
				North: msg.North,
				East:  msg.East,
			})
		case proto.TypeCellClick:
			out := h.session.HandleCellClick(ctx, grid.Cell{I: msg.I, J: msg.J})
			if out.WonNow {
				// The banner pushed during the click predates the
				// latched flag; resend it with won set.
				c.won.Store(true)
				c.send(proto.EncodeStatus(proto.Status{Text: h.session.StatusLine(), Won: true}))
			}
		case proto.TypeMove:
			h.session.PressMove(msg.DI, msg.DJ)
		case proto.TypePosition:
			h.session.PushPosition(grid.LatLng{Lat: msg.Lat, Lng: msg.Lng})
		case proto.TypeMode:
			mode, ok := game.ParseMovementMode(msg.Mode)
			if !ok {
				h.logger.Printf("unknown movement mode %q from %s", msg.Mode, c.name)
				continue
			}
			if err := h.session.SwitchMovementMode(ctx, mode); err != nil {
				h.logger.Printf("mode switch failed for %s: %v", c.name, err)
			}
		case proto.TypeReset:
			c.won.Store(false)
			h.session.Reset(ctx)
		case proto.TypeHeartbeat:
			now := time.Now()
			rtt := int64(0)
			if msg.SentAt > 0 {
				if delta := now.UnixMilli() - msg.SentAt; delta > 0 {
					rtt = delta
				}
			}
			c.send(proto.EncodeHeartbeat(proto.Heartbeat{
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt,
			}))
		default:
			h.logger.Printf("unknown message type %q from %s", msg.Type, c.name)
		}
	}
}

// adopt makes c the rendering client, closing whichever client held the
// surface before.
func (h *Handler) adopt(ctx context.Context, name string, c *client) {
	h.mu.Lock()
	prev := h.active
	h.active = c
	h.mu.Unlock()

	if prev != nil && prev != c {
		prev.close()
	}
	h.session.AttachSurface(ctx, name, c)
}

// release detaches c if it still owns the surface. Clients replaced by a
// newer hello just close.
func (h *Handler) release(c *client) {
	h.mu.Lock()
	owned := h.active == c
	if owned {
		h.active = nil
	}
	h.mu.Unlock()

	if owned {
		h.session.DetachSurface()
	}
	c.close()
}
