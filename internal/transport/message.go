// Package transport exposes the enquiry engine over WebSocket and REST.
package transport

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Wire event names, matching the frontend protocol.
const (
	EventChatMessage = "chat-message"
	EventBotResponse = "bot-response"
	EventBotTyping   = "bot-typing"
)

// InboundMessage is a parsed client frame.
type InboundMessage struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// botResponse is the answer frame sent to the client.
type botResponse struct {
	Event    string `json:"event"`
	Response string `json:"response"`
}

// botTyping toggles the typing indicator.
type botTyping struct {
	Event  string `json:"event"`
	Typing bool   `json:"typing"`
}

const inboundSchemaJSON = `{
	"type": "object",
	"required": ["event", "message"],
	"properties": {
		"event": {"type": "string", "enum": ["chat-message"]},
		"message": {"type": "string", "minLength": 1, "maxLength": 2000}
	},
	"additionalProperties": false
}`

var inboundSchema = gojsonschema.NewStringLoader(inboundSchemaJSON)

// ParseInbound validates a client frame against the envelope schema and
// decodes it. Anything that fails validation is rejected before it can
// reach the engine.
func ParseInbound(data []byte) (InboundMessage, error) {
	result, err := gojsonschema.Validate(inboundSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return InboundMessage{}, fmt.Errorf("validate message: %w", err)
	}
	if !result.Valid() {
		return InboundMessage{}, fmt.Errorf("invalid message: %s", result.Errors()[0])
	}

	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return InboundMessage{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}
