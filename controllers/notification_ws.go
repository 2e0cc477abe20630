package controller

import (
	"log"

	"github.com/gofiber/websocket/v2"

	"projecthub/models"
	"projecthub/utils"
)

// HandleNotificationStream pushes the caller's notifications over a
// websocket as they are created. The subscription lives for the lifetime of
// the connection; reads are only used to detect the peer going away.
func HandleNotificationStream(notifier *utils.Notifier) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return
		}

		ch := notifier.Subscribe(user.ID)
		defer notifier.Unsubscribe(user.ID, ch)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case notification := <-ch:
				if err := c.WriteJSON(notification); err != nil {
					log.Printf("Error writing notification to stream: %v", err)
					return
				}
			case <-done:
				return
			}
		}
	}
}
