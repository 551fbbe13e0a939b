// Package router forwards application messages between authorized
// connections. It is active only after the handshake completes; there is no
// mailbox, so a direct message to an identity with no live connection is
// dropped.
package router

import (
	"encoding/json"
	"log/slog"

	"github.com/lobbyn/relay/internal/model"
	"github.com/lobbyn/relay/internal/registry"
)

// Service routes envelopes from authorized senders.
type Service struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// New creates a message router
func New(reg *registry.Registry, logger *slog.Logger) *Service {
	return &Service{
		registry: reg,
		logger:   logger.With(slog.String("component", "router")),
	}
}

// Handle validates and forwards one application message from a connection.
// Malformed envelopes and unknown routing types are protocol violations and
// close the sender; a failure delivering to one recipient never affects the
// rest.
func (s *Service) Handle(id model.ConnectionID, data []byte) {
	conn, ok := s.registry.Get(id)
	if !ok {
		return
	}
	if conn.State != model.StateAuthorized {
		s.registry.CloseAndRemove(id, model.CloseUnauthorized)
		return
	}

	var envelope model.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.registry.CloseAndRemove(id, model.CloseInvalidJSON)
		return
	}

	routed, err := json.Marshal(model.RoutedMessage{
		SenderDisplayName: conn.Identity.DisplayName,
		SenderTag:         conn.Identity.Tag,
		MessageType:       envelope.MessageType,
		Payload:           envelope.Payload,
	})
	if err != nil {
		s.logger.Error("failed to encode routed message",
			slog.String("connection_id", string(id)),
			slog.String("error", err.Error()))
		return
	}

	switch envelope.RoutingType {
	case model.RoutingBroadcast:
		s.broadcast(id, envelope.MessageType, routed)
	case model.RoutingDirect:
		s.direct(id, envelope.Recipients, routed)
	default:
		s.logger.Info("invalid routing type",
			slog.String("connection_id", string(id)),
			slog.String("routing_type", string(envelope.RoutingType)))
		s.registry.CloseAndRemove(id, model.CloseInvalidRouting)
	}
}

// broadcast forwards to every other authorized connection. The sender never
// receives its own broadcast.
func (s *Service) broadcast(sender model.ConnectionID, messageType string, payload []byte) {
	sent, failed := 0, 0
	for _, peer := range s.registry.ListAuthorized() {
		if peer.ID == sender {
			continue
		}
		if err := s.registry.Send(peer.ID, payload); err != nil {
			failed++
			s.logger.Warn("broadcast delivery failed",
				slog.String("recipient_id", string(peer.ID)),
				slog.String("error", err.Error()))
			continue
		}
		sent++
	}
	s.logger.Debug("broadcast routed",
		slog.String("connection_id", string(sender)),
		slog.String("message_type", messageType),
		slog.Int("sent", sent),
		slog.Int("failed", failed))
}

// direct forwards to each listed recipient that has an authorized
// connection; absent recipients are dropped silently.
func (s *Service) direct(sender model.ConnectionID, recipients []model.Recipient, payload []byte) {
	for _, recipient := range recipients {
		target, ok := s.registry.FindByIdentity(recipient.DisplayName, recipient.Tag)
		if !ok {
			continue
		}
		if err := s.registry.Send(target, payload); err != nil {
			s.logger.Warn("direct delivery failed",
				slog.String("connection_id", string(sender)),
				slog.String("recipient_id", string(target)),
				slog.String("error", err.Error()))
		}
	}
}
