package handlers

import (
	"io"
	"time"

	"github.com/campus-hub/eventhub/internal/realtime"
	"github.com/gin-gonic/gin"
)

const streamPingInterval = 25 * time.Second

// Stream keeps a server-sent events connection open and forwards push events
// for the caller. Admin tokens only receive broadcasts.
func Stream(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		messages, unsubscribe := hub.Subscribe(regNumber(c))
		defer unsubscribe()

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.SSEvent("hello", gin.H{"ok": true})
		c.Writer.Flush()

		ticker := time.NewTicker(streamPingInterval)
		defer ticker.Stop()

		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case msg, ok := <-messages:
				if !ok {
					return false
				}
				c.SSEvent(msg.Event, msg.Payload)
				return true
			case <-ticker.C:
				c.SSEvent("ping", time.Now().Unix())
				return true
			}
		})
	}
}
