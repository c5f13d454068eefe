// Package notify fans out events to subscribers keyed by topic.
package notify

import "sync"

type Client[T any] struct {
	Msg   chan T
	Topic string
}

// Hub delivers without blocking: a subscriber whose buffer is full misses the message.
type Hub[T any] struct {
	clients map[*Client[T]]bool
	mu      sync.RWMutex
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		clients: make(map[*Client[T]]bool),
	}
}

// Subscribe registers a client for topic with the given buffer size.
func (h *Hub[T]) Subscribe(topic string, buffer int) *Client[T] {
	c := &Client[T]{Msg: make(chan T, buffer), Topic: topic}
	h.Add(c)
	return c
}

func (h *Hub[T]) Add(client *Client[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

// Delete unregisters client and closes its channel. Deleting twice is a no-op.
func (h *Hub[T]) Delete(client *Client[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	close(client.Msg)
}

// Broadcast sends msg to every client of topic. An empty client topic receives everything.
func (h *Hub[T]) Broadcast(topic string, msg T) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.Topic == topic || client.Topic == "" {
			select {
			case client.Msg <- msg:
			default:
			}
		}
	}
}

func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
