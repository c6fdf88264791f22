// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events publishes suggestion job lifecycle transitions over an
// in-process Watermill pub/sub. Subscribers (the websocket hub, tests)
// receive every transition without coupling to the worker.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"gamescout/internal/storage"
)

// TopicJobs carries JobEvent payloads.
const TopicJobs = "suggestions.jobs"

// JobEvent describes one job state transition.
type JobEvent struct {
	JobID           string            `json:"job_id"`
	SourceID        int               `json:"source_id"`
	Status          storage.JobStatus `json:"status"`
	Error           string            `json:"error,omitempty"`
	SuggestionCount int               `json:"suggestion_count"`
	Timestamp       time.Time         `json:"timestamp"`
}

// Bus is an in-process event bus for job transitions.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates the bus. The buffer absorbs bursts so a slow subscriber
// cannot stall the worker.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			&zerologAdapter{logger: logger},
		),
	}
}

// PublishJobEvent publishes a job transition. Publish failures are
// returned to the caller but are safe to log-and-continue: the durable
// job store remains the source of truth.
func (b *Bus) PublishJobEvent(event JobEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(TopicJobs, msg); err != nil {
		return fmt.Errorf("publish job event: %w", err)
	}
	return nil
}

// SubscribeJobs subscribes to job transitions. The returned channel
// closes when ctx is canceled.
func (b *Bus) SubscribeJobs(ctx context.Context) (<-chan *message.Message, error) {
	messages, err := b.pubsub.Subscribe(ctx, TopicJobs)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", TopicJobs, err)
	}
	return messages, nil
}

// DecodeJobEvent unmarshals a message payload into a JobEvent.
func DecodeJobEvent(msg *message.Message) (*JobEvent, error) {
	var event JobEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("decode job event: %w", err)
	}
	return &event, nil
}

// Close shuts the bus down, closing all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// zerologAdapter bridges Watermill's logger interface onto zerolog.
type zerologAdapter struct {
	logger zerolog.Logger
}

func (a *zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.event(a.logger.Error().Err(err), msg, fields)
}

func (a *zerologAdapter) Info(msg string, fields watermill.LogFields) {
	a.event(a.logger.Info(), msg, fields)
}

func (a *zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	a.event(a.logger.Debug(), msg, fields)
}

func (a *zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	a.event(a.logger.Trace(), msg, fields)
}

func (a *zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := a.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &zerologAdapter{logger: ctx.Logger()}
}

func (a *zerologAdapter) event(e *zerolog.Event, msg string, fields watermill.LogFields) {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

var _ watermill.LoggerAdapter = (*zerologAdapter)(nil)
