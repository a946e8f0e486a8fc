package bacs

import (
	"log/slog"
	"reflect"
)

// Subject is anything that hosts behaviors: block types, item types, any
// content definition assembled during bootstrap. Concrete subjects embed
// Container, which satisfies this interface for them.
type Subject interface {
	Behaviors() *Container
}

// Named subjects provide their own diagnostic label, used for validator
// scope attribution. Subjects without one get a generated label on Adopt.
type Named interface {
	Name() string
}

// Bakeable subjects receive OnBake after their behavior storage has been
// frozen, for subtype-specific post-processing.
type Bakeable interface {
	OnBake()
}

// watcher is a deferred RequireIfPresent declaration: fire runs once a
// behavior of the condition type exists on the subject.
type watcher struct {
	cond reflect.Type
	fire func()
}

// Container is the per-subject behavior store. Before baking it holds an
// insertion-ordered behavior list and pending watchers; after baking it
// holds a trimmed dense array indexed by behavior identity.
//
// Containers are assembled on a single bootstrap goroutine and must not be
// mutated after System.Bake has run.
type Container struct {
	self   Subject
	system *System
	label  string

	behaviors []Behavior
	ids       []BehaviorID
	mask      Bitmask

	// pending holds watchers keyed by the condition type they wait on.
	// fresh collects watchers registered by the construction frame
	// currently on the stack; depth tracks re-entrant Require nesting.
	pending map[reflect.Type][]watcher
	fresh   []watcher
	depth   int

	frozen  []Behavior
	isBaked bool
}

// Behaviors returns the container itself, satisfying Subject for any
// struct that embeds Container.
func (c *Container) Behaviors() *Container { return c }

// Label returns the subject's diagnostic label.
func (c *Container) Label() string { return c.label }

// Len returns the number of behaviors attached to the subject.
func (c *Container) Len() int { return len(c.behaviors) }

// All returns the subject's behaviors in insertion order.
func (c *Container) All() []Behavior {
	out := make([]Behavior, len(c.behaviors))
	copy(out, c.behaviors)
	return out
}

// Baked reports whether the container has been frozen.
func (c *Container) Baked() bool { return c.isBaked }

// adopt wires the container to its outer subject and owning scope.
func (c *Container) adopt(self Subject, sys *System, label string) {
	if c.system != nil {
		panic("bacs: subject adopted twice (label " + c.label + ")")
	}
	c.self = self
	c.system = sys
	c.label = label
}

func (c *Container) assertMutable(op string) {
	if c.system == nil {
		panic("bacs: " + op + " on a subject that was never adopted by a System")
	}
	if c.isBaked {
		panic("bacs: " + op + " on baked subject " + c.label)
	}
}

// require returns the behavior of type t, constructing it if absent.
// The drain after construction runs in two disjoint passes:
//
//  1. Watchers the new behavior's own RequireIfPresent calls registered are
//     resolved against every behavior on the subject except the new
//     behavior itself, so a behavior can never trigger its own
//     declarations against itself. Behaviors a sibling watcher's firing
//     introduces earlier in the same pass do count, keeping sibling
//     declaration order unobservable.
//  2. Pre-existing watchers waiting on exactly the type just added fire.
func (c *Container) require(t reflect.Type, construct func() Behavior) Behavior {
	c.assertMutable("Require")

	if b := c.lookup(t); b != nil {
		return b
	}

	id := c.system.register(t)

	// Construction may re-enter this container. Watchers registered by
	// this frame are captured separately from any enclosing frame's.
	saved := c.fresh
	c.fresh = nil
	c.depth++
	b := construct()
	c.depth--
	fresh := c.fresh
	c.fresh = saved

	newIndex := len(c.behaviors)
	c.behaviors = append(c.behaviors, b)
	c.ids = append(c.ids, id)
	c.mask.Set(id)

	c.system.publishAttach(c.self, t, id)

	// Pass 2 fires only watchers that existed before this call. Captured
	// here because pass 1 may queue a fresh watcher under the same type,
	// and that one must wait for a future addition, not the current one.
	preexisting := c.pending[t]
	delete(c.pending, t)

	for _, w := range fresh {
		if c.hasExcept(w.cond, newIndex) {
			w.fire()
		} else {
			c.queue(w)
		}
	}

	for _, w := range preexisting {
		w.fire()
	}

	return b
}

// requireIfPresent registers a watcher for the condition type. Calls made
// inside a construction frame are drained by that frame; top-level calls
// are resolved immediately against the behaviors already present.
func (c *Container) requireIfPresent(cond reflect.Type, fire func()) {
	c.assertMutable("RequireIfPresent")

	w := watcher{cond: cond, fire: fire}
	if c.depth > 0 {
		c.fresh = append(c.fresh, w)
		return
	}
	if c.has(cond) {
		w.fire()
		return
	}
	c.queue(w)
}

func (c *Container) queue(w watcher) {
	if c.pending == nil {
		c.pending = make(map[reflect.Type][]watcher)
	}
	c.pending[w.cond] = append(c.pending[w.cond], w)
}

// lookup finds a behavior by concrete type. Post-bake this is an indexed
// read: identities never assigned in the scope, and identities beyond the
// subject's trimmed array, both resolve to nil rather than an error.
func (c *Container) lookup(t reflect.Type) Behavior {
	if c.system == nil {
		return nil
	}
	id, ok := c.system.idOf(t)
	if !ok {
		return nil
	}
	if c.isBaked {
		if int(id) >= len(c.frozen) {
			return nil
		}
		return c.frozen[id]
	}
	if !c.mask.Has(id) {
		return nil
	}
	for i, bid := range c.ids {
		if bid == id {
			return c.behaviors[i]
		}
	}
	return nil
}

// has reports presence of a behavior type on the subject.
func (c *Container) has(t reflect.Type) bool {
	if c.system == nil {
		return false
	}
	id, ok := c.system.idOf(t)
	if !ok {
		return false
	}
	if c.isBaked {
		return int(id) < len(c.frozen) && c.frozen[id] != nil
	}
	return c.mask.Has(id)
}

// hasExcept reports presence of a behavior type on the subject, ignoring
// the behavior at index skip.
func (c *Container) hasExcept(t reflect.Type, skip int) bool {
	for i, b := range c.behaviors {
		if i == skip {
			continue
		}
		bt := reflect.TypeOf(b)
		if bt.Kind() == reflect.Ptr {
			bt = bt.Elem()
		}
		if bt == t {
			return true
		}
	}
	return false
}

// initialize runs the OnInitialize hook of every behavior, in insertion
// order.
func (c *Container) initialize() {
	for _, b := range c.behaviors {
		if init, ok := b.(Initializable); ok {
			init.OnInitialize()
		}
	}
}

// defineEvents runs the event definition pass: subject first, then every
// behavior in insertion order.
func (c *Container) defineEvents(r *EventRegistry) {
	if d, ok := c.self.(EventDefiner); ok {
		d.DefineEvents(r)
	}
	for _, b := range c.behaviors {
		if d, ok := b.(EventDefiner); ok {
			d.DefineEvents(r)
		}
	}
}

// subscribeEvents runs the subscription pass: subject first, then every
// behavior in insertion order. System.Bake guarantees every definition in
// the scope has already run.
func (c *Container) subscribeEvents(bus *EventBus) {
	if s, ok := c.self.(EventSubscriber); ok {
		s.SubscribeToEvents(bus)
	}
	for _, b := range c.behaviors {
		if s, ok := b.(EventSubscriber); ok {
			s.SubscribeToEvents(bus)
		}
	}
}

// Validate runs the subject's own OnValidate followed by every behavior's,
// updating the validator scope before each call so issues are attributed to
// the behavior that raised them. After delegating it raises a
// ValidationEvent on the scope's bus with the issue counts this subject
// contributed.
func (c *Container) Validate(v *Validator) {
	before := v.counts()
	v.SetScope(c.label)
	if val, ok := c.self.(Validatable); ok {
		val.OnValidate(v)
	}
	for _, b := range c.behaviors {
		if val, ok := b.(Validatable); ok {
			v.SetScope(c.label + "/" + behaviorName(b))
			val.OnValidate(v)
		}
	}
	after := v.counts()
	if c.system != nil {
		PublishEvent(c.system.bus, ValidationEvent{
			Subject:  c.self,
			Warnings: after.warnings - before.warnings,
			Errors:   after.errors - before.errors,
		})
	}
}

// bake freezes the container. Unresolved watchers are optional dependencies
// whose condition never materialized; they are dropped, not reported.
func (c *Container) bake(frozen []Behavior) {
	if c.isBaked {
		panic("bacs: subject " + c.label + " baked twice")
	}
	for cond := range c.pending {
		slog.Debug("bacs: dropping unsatisfied watcher", "subject", c.label, "condition", typeName(cond))
	}
	c.pending = nil
	c.fresh = nil
	c.frozen = frozen
	c.isBaked = true

	if b, ok := c.self.(Bakeable); ok {
		b.OnBake()
	}
}
