package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/logging"
	"github.com/ericogr/elemental-cards/internal/match"
)

const (
	streamBuffer = 32
	pingPeriod   = 30 * time.Second
	pongWait     = 2 * pingPeriod
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// StreamEvent is one websocket message.
type StreamEvent struct {
	Type      string             `json:"type"`
	Lifecycle string             `json:"lifecycle,omitempty"`
	Record    *game.ActionRecord `json:"record,omitempty"`
	View      MatchView          `json:"view"`
}

// StreamMatch pushes the caller's view after every change of the match.
// Slow clients miss intermediate updates; each event carries the full view.
func (h *GameHandler) StreamMatch(c *gin.Context) {
	m, err := h.matches.Get(c.Param("matchID"))
	if err != nil {
		writeError(c, err, constants.ErrMatchNotFound)
		return
	}
	caller := callerID(c)
	ctx := c.Request.Context()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", err, logging.Fields{constants.LogFieldMatchID: m.ID()})
		return
	}
	defer conn.Close()

	updates := make(chan match.Update, streamBuffer)
	unsubscribe := m.Subscribe(match.ObserverFunc(func(u match.Update) {
		select {
		case updates <- u:
		default:
		}
	}))
	defer unsubscribe()

	send := func(ev StreamEvent) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			logging.Debug("websocket write failed", logging.Fields{constants.LogFieldMatchID: m.ID(), "error": err.Error()})
			return false
		}
		return true
	}
	sendUpdate := func(u match.Update) bool {
		if u.State == nil {
			u.State = m.State()
		}
		return send(StreamEvent{Type: "update", Lifecycle: u.Lifecycle, Record: u.Record, View: h.viewFor(ctx, m, u.State, caller)})
	}
	if !send(StreamEvent{Type: "snapshot", View: h.viewFor(ctx, m, m.State(), caller)}) {
		return
	}

	// The reader only handles control frames and notices disconnects.
	closed := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case u := <-updates:
			if !sendUpdate(u) {
				return
			}
		case <-m.Done():
			for {
				select {
				case u := <-updates:
					if !sendUpdate(u) {
						return
					}
				default:
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, m.Status()), time.Now().Add(writeWait))
					return
				}
			}
		case <-closed:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
