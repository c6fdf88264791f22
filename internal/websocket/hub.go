// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package websocket pushes suggestion job transitions to connected
// browser clients. The hub fans event-bus messages out to every client;
// slow clients are dropped rather than allowed to stall the broadcast.
package websocket

import (
	"context"
	"sort"
	"sync"

	"gamescout/internal/events"
	"gamescout/internal/logging"
	"gamescout/internal/metrics"
)

// Message types pushed to clients.
const (
	MessageTypeJob  = "job"
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// Message is one websocket frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub maintains the active client set and broadcasts job events.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Serve implements suture.Service. Processes client lifecycle and
// broadcast traffic until ctx is canceled, then closes every client.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()

		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (h *Hub) String() string {
	return "websocket-hub"
}

// BroadcastJobEvent queues a job transition for delivery to all clients.
// Non-blocking; the frame is dropped if the broadcast buffer is full.
func (h *Hub) BroadcastJobEvent(event *events.JobEvent) {
	select {
	case h.broadcast <- Message{Type: MessageTypeJob, Data: event}:
	default:
		logging.Warn().Msg("broadcast channel full, dropping job event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketConnections.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("websocket client connected")
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketConnections.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("websocket client disconnected")
}

// send delivers a frame to every client in id order. Clients with a full
// send buffer are disconnected.
func (h *Hub) send(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		select {
		case client.send <- msg:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}

	metrics.WebsocketConnections.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}

	metrics.WebsocketConnections.Set(0)
	logging.Info().Str("component", "websocket-hub").Msg("websocket hub stopped")
}
