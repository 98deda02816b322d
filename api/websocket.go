package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Websocket message types.
const (
	MessageSyncMemory       = "sync_memory"
	MessageHarmonizeContent = "harmonize_content"

	MessageSyncResult          = "sync_result"
	MessageHarmonizationResult = "harmonization_result"
	MessageError               = "error"
)

// Message is an inbound websocket message.
type Message struct {
	Type         string `json:"type"`
	Content      string `json:"content,omitempty"`
	TargetFormat string `json:"target_format,omitempty"`
}

// Envelope is an outbound websocket message.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func errorEnvelope(format string, args ...any) Envelope {
	return Envelope{
		Type: MessageError,
		Data: ErrorResponse{Error: fmt.Sprintf(format, args...)},
	}
}

// requireUpgrade rejects plain HTTP requests to websocket routes.
func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// handleWebsocket answers every inbound message with one envelope until the
// peer disconnects.
func (s *Server) handleWebsocket(conn *websocket.Conn) {
	logger := s.logger.With(zap.String("session_id", uuid.NewString()))
	logger.Info("websocket connected", zap.String("remote", conn.RemoteAddr().String()))
	defer logger.Info("websocket disconnected")

	for {
		messageType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		reply := s.handleMessage(s.ctx, raw)
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

// handleMessage dispatches a single raw websocket message. Malformed and
// unknown messages produce an error envelope; the connection stays open.
func (s *Server) handleMessage(ctx context.Context, raw []byte) Envelope {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errorEnvelope("invalid message: %v", err)
	}

	switch msg.Type {
	case MessageSyncMemory:
		summary, err := s.bridge.Sync(ctx)
		if err != nil {
			s.logger.Error("websocket sync failed", zap.Error(err))
			return errorEnvelope("%v", err)
		}
		return Envelope{Type: MessageSyncResult, Data: summary}

	case MessageHarmonizeContent:
		if msg.Content == "" {
			return errorEnvelope("content is required")
		}
		result := s.bridge.Harmonize(ctx, msg.Content, msg.TargetFormat)
		return Envelope{Type: MessageHarmonizationResult, Data: result}

	case "":
		return errorEnvelope("message type is required")

	default:
		return errorEnvelope("unknown message type: %s", msg.Type)
	}
}
