package websock

import (
	"log"
	"net/http"

	"perch/middleware"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the realtime connection. The bearer token is validated
// once at handshake; an invalid or missing token is tolerated — the
// connection stays up but only receives the shared changes topic.
func HandleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := ""
	if claims, err := middleware.ValidateJWT(r.Header.Get("Authorization")); err == nil {
		userID = claims.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("ws upgrade failed:", err)
		return
	}

	topics := []string{ChangesTopic}
	if userID != "" {
		topics = append(topics, TopicForAuthor(userID))
	}

	client := &Client{
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Topics: topics,
		UserID: userID,
		ConnID: uuid.NewString(),
	}

	DefaultRegistry.Track(client.ConnID, conn)
	DefaultHub.Register(client)

	go writePump(client)
	go readPump(client)
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		DefaultRegistry.Touch(c.ConnID)
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func readPump(c *Client) {
	defer func() {
		DefaultHub.Unregister(c)
		DefaultRegistry.Remove(c.ConnID)
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
		DefaultRegistry.Touch(c.ConnID)
	}
}
