package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes exposes the live state feed. A client connects per session,
// immediately receives the current snapshot when one exists, then every
// snapshot broadcast until it disconnects. Inbound frames are ignored; the
// read loop only detects the disconnect.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/:sessionID", websocket.New(func(c *websocket.Conn) {
		client := hub.Register(c.Params("sessionID"))

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for snapshot := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, snapshot); err != nil {
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		// closing Send unblocks the writer, which drains and exits
		hub.Unregister(client)
		<-writerDone
	}))
}
