package websocket

import (
	"encoding/json"

	"github.com/isdelr/exercise-tracker/internal/models"
	"github.com/rs/zerolog/log"
)

// Hub maintains the set of active clients and broadcasts messages to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for the topic's subscribers and global clients.
	Broadcast chan Envelope

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan Envelope, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Str("topic", client.Topic).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case env := <-h.Broadcast:
			for client := range h.clients {
				if client.Topic != GlobalTopic && client.Topic != env.Topic {
					continue
				}
				if !client.Deliver(env.Data) {
					// Slow consumer; drop it rather than block the hub.
					client.close()
					delete(h.clients, client)
				}
			}
		}
	}
}

// Join registers a client. It reports false once the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters a client; it is a no-op after the hub has stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Stop terminates Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// PublishEvent broadcasts an activity event to global clients and to the
// clients following the event's user.
func (h *Hub) PublishEvent(event models.Event) {
	data, err := json.Marshal(Message{Action: "event", Payload: event})
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to encode event")
		return
	}

	topic := GlobalTopic
	if event.UserID != nil {
		topic = *event.UserID
	}

	select {
	case h.Broadcast <- Envelope{Topic: topic, Data: data}:
	case <-h.done:
	default:
		log.Warn().Str("event_id", event.ID).Msg("Websocket broadcast queue full, dropping event")
	}
}
