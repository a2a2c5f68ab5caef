package event

import (
	"sync"

	"github.com/bailflow/core/internal/domain/shared"
)

// HandlerRegistry maps event types to their subscribed handlers
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	catchAll []shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string][]shared.EventHandler),
	}
}

// Register subscribes a handler to the given event types. With no event
// types, the handler receives every event.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.catchAll = append(r.catchAll, handler)
		return
	}
	for _, t := range eventTypes {
		r.handlers[t] = append(r.handlers[t], handler)
	}
}

// Unregister removes a handler from every subscription
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for t, list := range r.handlers {
		r.handlers[t] = removeHandler(list, handler)
	}
	r.catchAll = removeHandler(r.catchAll, handler)
}

// GetHandlers returns the handlers subscribed to the event type, including
// catch-all subscribers.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specific := r.handlers[eventType]
	result := make([]shared.EventHandler, 0, len(specific)+len(r.catchAll))
	result = append(result, specific...)
	result = append(result, r.catchAll...)
	return result
}

func removeHandler(list []shared.EventHandler, handler shared.EventHandler) []shared.EventHandler {
	out := list[:0]
	for _, h := range list {
		if h != handler {
			out = append(out, h)
		}
	}
	return out
}
