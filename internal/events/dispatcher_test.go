package events

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var claimed, closed int
	d.Subscribe(EventTicketClaimed, func(ctx context.Context, e Event) error {
		claimed++
		return nil
	})
	d.Subscribe(EventTicketClosed, func(ctx context.Context, e Event) error {
		closed++
		return nil
	})

	_ = d.Publish(context.Background(), Event{Type: EventTicketClaimed, Kind: domain.KindTrade})
	_ = d.Publish(context.Background(), Event{Type: EventTicketClaimed, Kind: domain.KindMatch})
	_ = d.Publish(context.Background(), Event{Type: EventTicketClosed})

	if claimed != 2 || closed != 1 {
		t.Fatalf("claimed=%d closed=%d", claimed, closed)
	}
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()

	var second bool
	d.Subscribe(EventQuorumReached, func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventQuorumReached, func(ctx context.Context, e Event) error {
		second = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventQuorumReached}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !second {
		t.Fatal("handler after failing handler was skipped")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventProofSubmitted}); err != nil {
		t.Fatalf("publish without subscribers: %v", err)
	}
}
