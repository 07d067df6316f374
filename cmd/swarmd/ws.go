package main

import (
	"encoding/json"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/swarmweave/pkg/blackboard"
)

// handleWebSocket upgrades the request and streams every Blackboard event
// to the client as JSON until the connection closes, grounded on the
// teacher's events.ConnectionManager.HandleConnection: register a listener,
// defer its removal, and block the handler goroutine on the connection's
// read loop so a client disconnect is detected promptly. This runtime has
// one global event stream rather than the teacher's per-channel PG LISTEN
// subscriptions, so there is no subscribe/unsubscribe protocol to speak
// over the socket — every connection simply gets everything.
func (a *app) handleWebSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("ws: accept failed", "error", err)
		return
	}

	ctx := c.Request.Context()
	events := make(chan blackboard.Event, 64)
	token := a.bb.On(func(ev blackboard.Event) {
		select {
		case events <- ev:
		default:
			slog.Warn("ws: connection lagging, dropping event", "event_type", ev.Type)
		}
	})
	defer a.bb.Off(token)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Drain client frames purely to detect disconnects; this feed is
		// one-directional and never interprets what a client sends.
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "context done")
			return
		case <-done:
			return
		case ev := <-events:
			payload, err := json.Marshal(ev)
			if err != nil {
				slog.Error("ws: marshal event", "error", err)
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
	}
}
