package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/middleman-engine/internal/config"
	"github.com/spec-kit/middleman-engine/internal/events"
	"github.com/spec-kit/middleman-engine/internal/platform"
)

// NotificationService turns lifecycle events into channel notices. It is
// observation only: a lost notice never affects ticket state.
type NotificationService struct {
	notifier platform.Notifier
	channels config.ChannelConfig
	logger   *zap.Logger
}

// NewNotificationService constructs the service and subscribes it to the
// dispatcher.
func NewNotificationService(notifier platform.Notifier, channels config.ChannelConfig, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	s := &NotificationService{notifier: notifier, channels: channels, logger: logger}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketClaimed,
		events.EventTicketUnclaimed,
		events.EventQuorumReached,
		events.EventProofSubmitted,
		events.EventTicketClosed,
		events.EventParticipantAdded,
		events.EventParticipantRemoved,
	} {
		dispatcher.Subscribe(eventType, s.handle)
	}
	return s
}

func (s *NotificationService) handle(ctx context.Context, event events.Event) error {
	notice, ok := s.render(event)
	if !ok {
		return nil
	}

	if event.ChannelID != 0 && event.Type != events.EventTicketClosed {
		s.notifier.Post(ctx, event.ChannelID, notice)
	}
	if s.channels.LogChannelID != 0 {
		s.notifier.Post(ctx, s.channels.LogChannelID, notice)
	}
	if event.Type == events.EventProofSubmitted && s.channels.ProofChannelID != 0 {
		s.notifier.Post(ctx, s.channels.ProofChannelID, notice)
	}

	s.logger.Debug("notice posted",
		zap.String("event", string(event.Type)),
		zap.Int64("ticket_id", event.TicketID))
	return nil
}

func (s *NotificationService) render(event events.Event) (platform.Notice, bool) {
	fields := map[string]string{
		"ticket": strconv.FormatInt(event.TicketID, 10),
		"kind":   string(event.Kind),
		"actor":  strconv.FormatInt(event.ActorID, 10),
	}

	switch event.Type {
	case events.EventTicketCreated:
		if p, ok := event.Payload.(events.TicketCreatedPayload); ok {
			fields["counterparty"] = p.Counterparty
			fields["tier"] = p.Tier.Label()
		}
		return platform.Notice{Title: "Ticket opened", Body: "A new ticket is waiting for a middleman.", Fields: fields}, true
	case events.EventTicketClaimed:
		return platform.Notice{Title: "Ticket claimed", Body: "A middleman has claimed this ticket.", Fields: fields}, true
	case events.EventTicketUnclaimed:
		return platform.Notice{Title: "Ticket unclaimed", Body: "This ticket is available again.", Fields: fields}, true
	case events.EventQuorumReached:
		return platform.Notice{Title: "Both parties confirmed", Body: "Both participants have confirmed. The middleman may proceed.", Fields: fields}, true
	case events.EventProofSubmitted:
		return platform.Notice{Title: "Proof submitted", Body: "The middleman recorded completion proof.", Fields: fields}, true
	case events.EventTicketClosed:
		return platform.Notice{Title: "Ticket closed", Body: "This ticket is closed and its channel is being removed.", Fields: fields}, true
	case events.EventParticipantAdded, events.EventParticipantRemoved:
		verb := "added to"
		if event.Type == events.EventParticipantRemoved {
			verb = "removed from"
		}
		if p, ok := event.Payload.(events.ParticipantPayload); ok {
			fields["user"] = strconv.FormatInt(p.UserID, 10)
		}
		return platform.Notice{Title: "Participants updated", Body: fmt.Sprintf("A user was %s the ticket.", verb), Fields: fields}, true
	default:
		return platform.Notice{}, false
	}
}
