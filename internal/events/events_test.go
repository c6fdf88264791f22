// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"gamescout/internal/logging"
	"gamescout/internal/storage"
)

func receiveEvent(t *testing.T, name string, messages <-chan *message.Message) *JobEvent {
	t.Helper()

	select {
	case msg := <-messages:
		event, err := DecodeJobEvent(msg)
		if err != nil {
			t.Fatalf("%s: DecodeJobEvent() error = %v", name, err)
		}
		msg.Ack()
		return event

	case <-time.After(2 * time.Second):
		t.Fatalf("%s: timed out waiting for event", name)
		return nil
	}
}

func TestBusPublishSubscribeRoundtrip(t *testing.T) {
	bus := NewBus(logging.NewTestLogger(io.Discard))
	defer bus.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.SubscribeJobs(ctx)
	if err != nil {
		t.Fatalf("SubscribeJobs() error = %v", err)
	}

	sent := JobEvent{
		JobID:           "job-1",
		SourceID:        42,
		Status:          storage.JobSucceeded,
		SuggestionCount: 5,
		Timestamp:       time.Now().UTC(),
	}
	if err := bus.PublishJobEvent(sent); err != nil {
		t.Fatalf("PublishJobEvent() error = %v", err)
	}

	got := receiveEvent(t, "subscriber", messages)
	if got.JobID != sent.JobID || got.SourceID != sent.SourceID {
		t.Errorf("decoded = %+v, want %+v", got, sent)
	}
	if got.Status != storage.JobSucceeded {
		t.Errorf("status = %q, want succeeded", got.Status)
	}
	if got.SuggestionCount != 5 {
		t.Errorf("suggestion count = %d, want 5", got.SuggestionCount)
	}
}

func TestBusFansOutToAllSubscribers(t *testing.T) {
	bus := NewBus(logging.NewTestLogger(io.Discard))
	defer bus.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.SubscribeJobs(ctx)
	if err != nil {
		t.Fatalf("first SubscribeJobs() error = %v", err)
	}
	second, err := bus.SubscribeJobs(ctx)
	if err != nil {
		t.Fatalf("second SubscribeJobs() error = %v", err)
	}

	if err := bus.PublishJobEvent(JobEvent{JobID: "job-1", SourceID: 1, Status: storage.JobRunning}); err != nil {
		t.Fatalf("PublishJobEvent() error = %v", err)
	}

	for name, ch := range map[string]<-chan *message.Message{"first": first, "second": second} {
		got := receiveEvent(t, name, ch)
		if got.JobID != "job-1" {
			t.Errorf("%s received job id %q, want job-1", name, got.JobID)
		}
	}
}

func TestDecodeJobEventRejectsGarbage(t *testing.T) {
	msg := message.NewMessage("id", []byte("not json"))
	if _, err := DecodeJobEvent(msg); err == nil {
		t.Error("DecodeJobEvent() error = nil, want decode failure")
	}
}

func TestSubscriptionClosesOnCancel(t *testing.T) {
	bus := NewBus(logging.NewTestLogger(io.Discard))
	defer bus.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())

	messages, err := bus.SubscribeJobs(ctx)
	if err != nil {
		t.Fatalf("SubscribeJobs() error = %v", err)
	}

	cancel()

	select {
	case _, open := <-messages:
		if open {
			t.Error("received message after cancel, want closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription channel not closed after cancel")
	}
}
