package bacs

import (
	"reflect"
)

// MaxEventTypes is the maximum number of event types per scope.
const MaxEventTypes = 256

// EventRegistry holds the event types a scope's subjects and behaviors
// publish. Definitions are made in DefineEvents hooks, always before any
// SubscribeToEvents hook runs; defining the same type twice is allowed and
// idempotent, since many subjects carry the same behaviors.
type EventRegistry struct {
	types map[reflect.Type]uint8
	names [MaxEventTypes]string
	next  int
}

// NewEventRegistry creates an empty registry.
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{types: make(map[reflect.Type]uint8)}
}

// DefineEvent registers T as a publishable event type under the given name.
func DefineEvent[T any](r *EventRegistry, name string) {
	t := reflect.TypeFor[T]()
	if _, ok := r.types[t]; ok {
		return
	}
	if r.next >= MaxEventTypes {
		panic("bacs: too many event types")
	}
	id := uint8(r.next)
	r.next++
	r.types[t] = id
	r.names[id] = name
}

// Defined reports whether T has been registered.
func Defined[T any](r *EventRegistry) bool {
	_, ok := r.types[reflect.TypeFor[T]()]
	return ok
}

// EventName returns the registered name for T, or "".
func EventName[T any](r *EventRegistry) string {
	if id, ok := r.types[reflect.TypeFor[T]()]; ok {
		return r.names[id]
	}
	return ""
}

// EventBus dispatches published events to handlers synchronously, in
// subscription order. It only accepts subscriptions for event types its
// registry already defines; subscribing to an undefined type is a
// configuration error, which is what makes the define-before-subscribe
// ordering of System.Bake enforceable.
type EventBus struct {
	registry *EventRegistry
	handlers [MaxEventTypes][]any
}

// NewEventBus creates a bus backed by the given registry.
func NewEventBus(r *EventRegistry) *EventBus {
	return &EventBus{registry: r}
}

// SubscribeEvent attaches a handler for events of type T. Panics if T was
// never defined on the bus's registry.
func SubscribeEvent[T any](b *EventBus, handler func(T)) {
	t := reflect.TypeFor[T]()
	id, ok := b.registry.types[t]
	if !ok {
		panic("bacs: subscribe to undefined event type " + typeName(t))
	}
	b.handlers[id] = append(b.handlers[id], handler)
}

// PublishEvent delivers an event to every subscribed handler, in
// subscription order. Publishing a type with no definition or no handlers
// is a no-op.
func PublishEvent[T any](b *EventBus, event T) {
	if id, ok := b.registry.types[reflect.TypeFor[T]()]; ok {
		for _, h := range b.handlers[id] {
			h.(func(T))(event)
		}
	}
}

// Lifecycle events published by the system itself. They are defined on
// every scope's registry at creation.

// BehaviorAttachEvent is published when a behavior is attached to a subject
// during assembly.
type BehaviorAttachEvent struct {
	Subject      Subject
	BehaviorType reflect.Type
	ID           BehaviorID
}

// SubjectBakedEvent is published for each subject as its storage is frozen.
type SubjectBakedEvent struct {
	Subject   Subject
	Behaviors int
}

// ValidationEvent is published after a subject's validation pass with the
// issue counts it contributed.
type ValidationEvent struct {
	Subject  Subject
	Warnings int
	Errors   int
}
