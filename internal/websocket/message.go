package websocket

import "encoding/json"

// GlobalTopic receives every published message.
const GlobalTopic = "global"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// Envelope is a message addressed to the clients subscribed to Topic, in
// addition to every global client.
type Envelope struct {
	Topic string
	Data  []byte
}

// NewErrorMessage encodes an error notification for a single client.
func NewErrorMessage(text string) []byte {
	data, _ := json.Marshal(Message{Action: "error", Payload: map[string]string{"message": text}})
	return data
}
