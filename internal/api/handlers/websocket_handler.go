package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/isdelr/exercise-tracker/internal/services"
	ws "github.com/isdelr/exercise-tracker/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections to the live activity feed.
type WebSocketHandler struct {
	hub   *ws.Hub
	users services.UserServiceProvider
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub, users services.UserServiceProvider) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, users: users}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same open policy as the API's CORS configuration.
		return true
	},
}

// Serve handles the WebSocket connection request. /ws/users/{id} follows one
// user and answers 404 before upgrading if the user is unknown; /ws receives
// every event.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	topic := ws.GlobalTopic
	if id := chi.URLParam(r, "id"); id != "" {
		user, err := h.users.GetUserByID(r.Context(), id)
		if err != nil {
			writeError(w, err, id)
			return
		}
		topic = user.ID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, topic)
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleIncomingWSMessage)
		h.hub.Leave(client)
	}()
}

// handleIncomingWSMessage answers pings; the feed accepts no other commands.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Error().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		return
	}

	switch msg.Action {
	case "ping":
		data, _ := json.Marshal(ws.Message{Action: "pong"})
		client.Deliver(data)
	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		client.Deliver(ws.NewErrorMessage("Unknown action: " + msg.Action))
	}
}
