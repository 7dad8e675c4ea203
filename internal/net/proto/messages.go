// Package proto defines the websocket wire protocol between the session
// and a rendering client. Inbound messages arrive as one flat envelope
// keyed by type; outbound commands are encoded per type with the protocol
// version stamped on every frame.
package proto

import (
	"encoding/json"
	"fmt"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Type identifiers for outbound websocket payloads.
	typeRenderRect = "renderRect"
	typeRemoveRect = "removeRect"
	typeBindLabel  = "bindLabel"
	typePanTo      = "panTo"
	typeMarker     = "marker"
	typeStatus     = "status"
	typeRules      = "rules"
	typeHeartbeat  = "heartbeat"
)

// Client message type identifiers.
const (
	TypeHello     = "hello"
	TypeViewport  = "viewport"
	TypeCellClick = "cellClick"
	TypeMove      = "move"
	TypePosition  = "position"
	TypeMode      = "mode"
	TypeReset     = "reset"
	TypeHeartbeat = "heartbeat"
)

// ClientMessage captures an inbound websocket message from the client.
// One envelope carries every event type; the Type field selects which
// of the remaining fields are meaningful.
type ClientMessage struct {
	Ver    int     `json:"ver,omitempty"`
	Type   string  `json:"type"`
	Client string  `json:"client,omitempty"`
	South  float64 `json:"south"`
	West   float64 `json:"west"`
	North  float64 `json:"north"`
	East   float64 `json:"east"`
	I      int     `json:"i"`
	J      int     `json:"j"`
	DI     int     `json:"di"`
	DJ     int     `json:"dj"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Mode   string  `json:"mode,omitempty"`
	SentAt int64   `json:"sentAt"`
}

// DecodeClientMessage converts raw websocket payloads into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// RenderRect instructs the client to draw one cell rectangle.
type RenderRect struct {
	Handle int64
	South  float64
	West   float64
	North  float64
	East   float64
	Label  string
}

// EncodeRenderRect renders a draw command.
func EncodeRenderRect(msg RenderRect) ([]byte, error) {
	frame := struct {
		Ver    int     `json:"ver"`
		Type   string  `json:"type"`
		Handle int64   `json:"handle"`
		South  float64 `json:"south"`
		West   float64 `json:"west"`
		North  float64 `json:"north"`
		East   float64 `json:"east"`
		Label  string  `json:"label,omitempty"`
	}{
		Ver:    Version,
		Type:   typeRenderRect,
		Handle: msg.Handle,
		South:  msg.South,
		West:   msg.West,
		North:  msg.North,
		East:   msg.East,
		Label:  msg.Label,
	}
	return json.Marshal(frame)
}

// RemoveRect instructs the client to delete a previously drawn rectangle.
type RemoveRect struct {
	Handle int64
}

// EncodeRemoveRect renders a delete command.
func EncodeRemoveRect(msg RemoveRect) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Handle int64  `json:"handle"`
	}{
		Ver:    Version,
		Type:   typeRemoveRect,
		Handle: msg.Handle,
	}
	return json.Marshal(frame)
}

// BindLabel replaces the label of a drawn rectangle in place.
type BindLabel struct {
	Handle int64
	Label  string
}

// EncodeBindLabel renders a relabel command.
func EncodeBindLabel(msg BindLabel) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Handle int64  `json:"handle"`
		Label  string `json:"label"`
	}{
		Ver:    Version,
		Type:   typeBindLabel,
		Handle: msg.Handle,
		Label:  msg.Label,
	}
	return json.Marshal(frame)
}

// PanTo recenters the client viewport on a coordinate.
type PanTo struct {
	Lat float64
	Lng float64
}

// EncodePanTo renders a recenter command.
func EncodePanTo(msg PanTo) ([]byte, error) {
	frame := struct {
		Ver  int     `json:"ver"`
		Type string  `json:"type"`
		Lat  float64 `json:"lat"`
		Lng  float64 `json:"lng"`
	}{
		Ver:  Version,
		Type: typePanTo,
		Lat:  msg.Lat,
		Lng:  msg.Lng,
	}
	return json.Marshal(frame)
}

// Marker moves the player marker to a coordinate.
type Marker struct {
	Lat float64
	Lng float64
}

// EncodeMarker renders a marker move command.
func EncodeMarker(msg Marker) ([]byte, error) {
	frame := struct {
		Ver  int     `json:"ver"`
		Type string  `json:"type"`
		Lat  float64 `json:"lat"`
		Lng  float64 `json:"lng"`
	}{
		Ver:  Version,
		Type: typeMarker,
		Lat:  msg.Lat,
		Lng:  msg.Lng,
	}
	return json.Marshal(frame)
}

// Status replaces the client status line.
type Status struct {
	Text string
	Won  bool
}

// EncodeStatus renders a status line update.
func EncodeStatus(msg Status) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Text string `json:"text"`
		Won  bool   `json:"won,omitempty"`
	}{
		Ver:  Version,
		Type: typeStatus,
		Text: msg.Text,
		Won:  msg.Won,
	}
	return json.Marshal(frame)
}

// Rules describes the world parameters a client needs to size its grid.
type Rules struct {
	CellSizeDegrees   float64
	InteractionRadius int
	WinTarget         int
}

// EncodeRules renders the world parameter frame sent after hello.
func EncodeRules(msg Rules) ([]byte, error) {
	frame := struct {
		Ver               int     `json:"ver"`
		Type              string  `json:"type"`
		CellSizeDegrees   float64 `json:"cellSizeDegrees"`
		InteractionRadius int     `json:"interactionRadius"`
		WinTarget         int     `json:"winTarget"`
	}{
		Ver:               Version,
		Type:              typeRules,
		CellSizeDegrees:   msg.CellSizeDegrees,
		InteractionRadius: msg.InteractionRadius,
		WinTarget:         msg.WinTarget,
	}
	return json.Marshal(frame)
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement payload.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}
