package bacs

import (
	"fmt"
	"reflect"
)

// BehaviorID is the identity of a concrete behavior type within one scope.
// Identities are assigned in first-seen registration order and index the
// dense per-subject storage after baking. Valid IDs range from 0 to 254.
type BehaviorID uint8

// MaxBehaviors is the maximum number of behavior types supported per scope.
const MaxBehaviors = 255

// Behavior is implemented by every behavior struct through embedding Base.
// A behavior belongs to exactly one subject for its whole lifetime.
type Behavior interface {
	// Subject returns the subject this behavior is attached to.
	Subject() Subject

	bind(c *Container)
}

// Base must be embedded in every behavior struct. It carries the
// back-reference to the owning subject and makes the struct constructible
// through Require, the only creation path.
type Base struct {
	container *Container
}

// Subject returns the subject this behavior is attached to.
func (b *Base) Subject() Subject {
	if b.container == nil {
		return nil
	}
	return b.container.self
}

func (b *Base) bind(c *Container) {
	if b.container != nil {
		panic("bacs: behavior already bound to a subject")
	}
	b.container = c
}

// behaviorPtr constrains PT to a pointer to a behavior struct. The unexported
// method on Base guarantees only embedders qualify.
type behaviorPtr[T any] interface {
	*T
	Behavior
}

// Attachable behaviors receive OnAttach immediately after construction,
// while still inside the Require call that created them. This is where a
// behavior sets up its aspects, Requires companions and declares
// RequireIfPresent watchers; all of it may re-enter the container.
type Attachable interface {
	OnAttach()
}

// Initializable behaviors receive OnInitialize once per bake, after every
// behavior on the subject exists but before storage is frozen. This is the
// place to resolve aspects into plain fields for fast runtime access.
type Initializable interface {
	OnInitialize()
}

// Validatable behaviors and subjects receive OnValidate during the
// validation pass of System.Bake. Issues are reported to the validator,
// never returned, so a single pass surfaces every problem in the scope.
type Validatable interface {
	OnValidate(v *Validator)
}

// EventDefiner behaviors and subjects declare the event types they publish.
// All definitions in a scope run before any subscription.
type EventDefiner interface {
	DefineEvents(r *EventRegistry)
}

// EventSubscriber behaviors and subjects attach handlers to events defined
// anywhere in the scope.
type EventSubscriber interface {
	SubscribeToEvents(b *EventBus)
}

// Require returns the subject's behavior of type T, constructing and
// attaching it first if absent. Construction may re-enter the container:
// a behavior's setup can Require further behaviors or declare
// RequireIfPresent watchers. Require is idempotent per type and panics if
// called after the scope is baked.
func Require[T any, PT behaviorPtr[T]](s Subject) PT {
	c := s.Behaviors()
	t := reflect.TypeFor[T]()
	b := c.require(t, func() Behavior {
		nb := PT(new(T))
		nb.bind(c)
		if a, ok := any(nb).(Attachable); ok {
			a.OnAttach()
		}
		return nb
	})
	return b.(PT)
}

// Get returns the subject's behavior of type T, or nil if absent.
// Pre-bake this is a scan of the subject's behavior list; post-bake it is
// an O(1) indexed lookup by identity.
func Get[T any, PT behaviorPtr[T]](s Subject) PT {
	b := s.Behaviors().lookup(reflect.TypeFor[T]())
	if b == nil {
		var zero PT
		return zero
	}
	return b.(PT)
}

// Is reports whether the subject carries a behavior of type T.
func Is[T any](s Subject) bool {
	return s.Behaviors().has(reflect.TypeFor[T]())
}

// RequireIfPresent declares that once a behavior of type Cond exists on the
// subject, now or later during assembly, a behavior of type T must exist
// too; init, if non-nil, runs on T exactly once when that happens. A
// condition type that never appears is not an error: the declaration is
// dropped at bake time.
//
// Declarations made inside a behavior's construction are resolved against
// every behavior on the subject except the declaring behavior itself, so a
// behavior can never satisfy its own freshly registered condition.
func RequireIfPresent[T any, Cond any, PT behaviorPtr[T]](s Subject, init func(PT)) {
	c := s.Behaviors()
	c.requireIfPresent(reflect.TypeFor[Cond](), func() {
		b := Require[T, PT](s)
		if init != nil {
			init(b)
		}
	})
}

// behaviorName returns the concrete struct name of a behavior instance.
func behaviorName(b Behavior) string {
	t := reflect.TypeOf(b)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// typeName formats a behavior type key for diagnostics.
func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return fmt.Sprint(t)
}
