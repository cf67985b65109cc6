package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler to WebSocket connections

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// allow all origins for development purpose; can restrict later
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler: handle upgrade request from HTTP connection to WebSocket
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		// get user info from JWT middleware
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: user ID not found"})
			return
		}

		userName := "Unknown"
		if name, ok := c.Get("username"); ok {
			if s, isString := name.(string); isString {
				userName = s
			}
		}

		// upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade to WebSocket"})
			return
		}

		// create new client; one client per connection so the same user can
		// watch different anime from different tabs
		client := NewClient(
			uuid.New().String(), // unique client ID
			userID.(string),     // user ID from JWT
			userName,            // user name from JWT
			conn,                // WebSocket connection
			hub,                 // reference to the central Hub
		)

		// register client to hub
		hub.Register(client)

		// start goroutines for read and write pumps
		go client.ReadPump()
		go client.WritePump()
	}
}
