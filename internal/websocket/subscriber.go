// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package websocket

import (
	"context"

	"gamescout/internal/events"
	"gamescout/internal/logging"
)

// Subscriber bridges the job event bus onto the hub: every published
// job transition becomes a broadcast frame.
type Subscriber struct {
	bus *events.Bus
	hub *Hub
}

// NewSubscriber creates the bus-to-hub bridge.
func NewSubscriber(bus *events.Bus, hub *Hub) *Subscriber {
	return &Subscriber{bus: bus, hub: hub}
}

// Serve implements suture.Service. Consumes job events until ctx is
// canceled; the bus closes the channel on cancellation.
func (s *Subscriber) Serve(ctx context.Context) error {
	messages, err := s.bus.SubscribeJobs(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				return ctx.Err()
			}

			event, err := events.DecodeJobEvent(msg)
			if err != nil {
				logging.Warn().Err(err).Msg("drop undecodable job event")
				msg.Ack()
				continue
			}

			s.hub.BroadcastJobEvent(event)
			msg.Ack()
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Subscriber) String() string {
	return "websocket-subscriber"
}
