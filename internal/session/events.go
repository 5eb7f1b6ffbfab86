package session

import (
	"sync"

	"github.com/nerrad567/gray-logic-vizio/internal/device"
)

// Kind identifies a session event.
type Kind int

// Session event kinds.
const (
	KindConnecting Kind = iota
	KindConnected
	KindDisconnected
	KindPaired
	KindError
	KindUpdate
)

// String returns the event kind name used in logs and wire payloads.
func (k Kind) String() string {
	switch k {
	case KindConnecting:
		return "connecting"
	case KindConnected:
		return "connected"
	case KindDisconnected:
		return "disconnected"
	case KindPaired:
		return "paired"
	case KindError:
		return "error"
	case KindUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Update is a partial attribute change. Nil pointer fields and a nil
// slice mean "unchanged"; only attributes that actually changed value
// are populated when an Update reaches listeners.
type Update struct {
	State      *device.PowerState `json:"state,omitempty"`
	Source     *string            `json:"source,omitempty"`
	SourceList []string           `json:"source_list,omitempty"`
}

// Event is one session notification.
type Event struct {
	Kind     Kind    `json:"kind"`
	DeviceID string  `json:"device_id"`
	Update   *Update `json:"update,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// Listener receives events. Listeners are invoked synchronously from
// the emitting goroutine and must not block.
type Listener func(Event)

// Bus distributes session events to subscribers.
//
// Subscriptions are keyed by device ID, with a separate set of
// listeners receiving every event. Unsubscribing takes effect on the
// next emission; an emission already in progress may still invoke a
// listener that is being removed concurrently.
//
// Thread Safety: all methods are safe for concurrent use.
type Bus struct {
	mu        sync.RWMutex
	nextID    int
	byDevice  map[string]map[int]Listener
	broadcast map[int]Listener
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		byDevice:  make(map[string]map[int]Listener),
		broadcast: make(map[int]Listener),
	}
}

// Subscribe registers a listener for one device's events.
// The returned function removes the subscription.
func (b *Bus) Subscribe(deviceID string, fn Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.byDevice[deviceID] == nil {
		b.byDevice[deviceID] = make(map[int]Listener)
	}
	b.byDevice[deviceID][id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.byDevice[deviceID], id)
		if len(b.byDevice[deviceID]) == 0 {
			delete(b.byDevice, deviceID)
		}
		b.mu.Unlock()
	}
}

// SubscribeAll registers a listener for events from every device.
// The returned function removes the subscription.
func (b *Bus) SubscribeAll(fn Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.broadcast[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.broadcast, id)
		b.mu.Unlock()
	}
}

// Emit delivers an event to the device's listeners and all broadcast
// listeners. The listener set is snapshotted under the lock and
// invoked outside it, so listeners may subscribe or unsubscribe from
// within a callback.
func (b *Bus) Emit(event Event) {
	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.byDevice[event.DeviceID])+len(b.broadcast))
	for _, fn := range b.byDevice[event.DeviceID] {
		listeners = append(listeners, fn)
	}
	for _, fn := range b.broadcast {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}
