// Package monitor serves a debug websocket endpoint that streams the
// live server channel table as JSON, the introspection-era successor
// to the teacher's remote-desktop-framebuffer websocket gateway role —
// repurposed here from pixel delivery to protocol telemetry.
package monitor

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rcarmo/go-pva/internal/channel"
	"github.com/rcarmo/go-pva/internal/logging"
)

// DefaultInterval is how often a connected monitor client receives a
// fresh snapshot when Handler.Interval is unset.
const DefaultInterval = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChannelSnapshot is one channel table row as streamed to a client.
type ChannelSnapshot struct {
	ServerID     uint32 `json:"serverId"`
	ClientID     uint32 `json:"clientId"`
	Name         string `json:"name"`
	AccessRights uint16 `json:"accessRights"`
}

// Snapshot is the JSON frame pushed to every connected monitor client.
type Snapshot struct {
	Channels []ChannelSnapshot `json:"channels"`
}

// Handler serves GET /monitor, upgrading to a websocket and pushing a
// Snapshot every Interval until the client disconnects.
type Handler struct {
	Channels *channel.Table
	Interval time.Duration
}

// NewHandler builds a Handler over the given channel table.
func NewHandler(channels *channel.Table, interval time.Duration) *Handler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Handler{Channels: channels, Interval: interval}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("monitor: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		if err := conn.WriteJSON(h.snapshot()); err != nil {
			logging.Debug("monitor: client disconnected: %v", err)
			return
		}
		<-ticker.C
	}
}

func (h *Handler) snapshot() Snapshot {
	entries := h.Channels.Snapshot()
	out := make([]ChannelSnapshot, 0, len(entries))
	for serverID, e := range entries {
		out = append(out, ChannelSnapshot{
			ServerID:     serverID,
			ClientID:     e.ClientID,
			Name:         string(e.Name),
			AccessRights: e.AccessRights,
		})
	}
	return Snapshot{Channels: out}
}
