package ws

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/net/proto"
	"merge-and-wander/server/internal/view"
)

// writeWait bounds how long one frame write may block before the
// connection is declared dead.
const writeWait = 10 * time.Second

// client adapts one websocket connection into a rendering surface. Frame
// writes serialize through the mutex; after the first failed write the
// connection closes and every later call is a no-op, so a dead client
// cannot wedge the session.
type client struct {
	conn   *websocket.Conn
	logger *log.Logger
	name   string
	won    atomic.Bool

	mu     sync.Mutex
	closed bool
}

var _ view.Surface = (*client)(nil)

func newClient(conn *websocket.Conn, name string, logger *log.Logger) *client {
	return &client{conn: conn, logger: logger, name: name}
}

func (c *client) RenderRect(h view.Handle, b grid.Bounds, label string) {
	c.send(proto.EncodeRenderRect(proto.RenderRect{
		Handle: int64(h),
		South:  b.South,
		West:   b.West,
		North:  b.North,
		East:   b.East,
		Label:  label,
	}))
}

func (c *client) UpdateLabel(h view.Handle, label string) {
	c.send(proto.EncodeBindLabel(proto.BindLabel{Handle: int64(h), Label: label}))
}

func (c *client) RemoveRect(h view.Handle) {
	c.send(proto.EncodeRemoveRect(proto.RemoveRect{Handle: int64(h)}))
}

func (c *client) PanTo(p grid.LatLng) {
	c.send(proto.EncodePanTo(proto.PanTo{Lat: p.Lat, Lng: p.Lng}))
}

func (c *client) MoveMarker(p grid.LatLng) {
	c.send(proto.EncodeMarker(proto.Marker{Lat: p.Lat, Lng: p.Lng}))
}

func (c *client) SetStatus(text string) {
	c.send(proto.EncodeStatus(proto.Status{Text: text, Won: c.won.Load()}))
}

// send takes the encoder's output directly so the surface methods above
// stay one-liners.
func (c *client) send(data []byte, err error) {
	if err != nil {
		c.logger.Printf("failed to encode frame for %s: %v", c.name, err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Printf("failed to send frame to %s: %v", c.name, err)
		c.closed = true
		c.conn.Close()
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.conn.Close()
}
