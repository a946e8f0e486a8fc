package bacs

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// System is the per-scope coordinator. A scope covers one family of
// subjects (e.g. all block types) and one behavior base; it assigns
// behavior identities in first-seen order, tracks every adopted subject,
// and performs the one-time Bake that freezes the whole scope.
//
// Multiple System instances can coexist in the same process for isolated
// scopes (blocks, items, fluids).
//
// Assembly is single-threaded by contract: all Adopt, Require and Bake
// calls must come from one bootstrap goroutine. The system asserts this
// cheaply with a try-lock on every mutation; overlapping calls panic
// instead of corrupting the registry.
type System struct {
	name string

	// ids and order form the identity registry. order doubles as the
	// first-seen sequence: an identity is its index in order, assigned
	// once and never reassigned.
	ids   map[reflect.Type]BehaviorID
	order []reflect.Type

	subjects []Subject

	registry *EventRegistry
	bus      *EventBus

	baked  bool
	bootMu sync.Mutex
}

// BakeReport summarises a completed bake for diagnostics and telemetry.
type BakeReport struct {
	// KnownTypes is the number of behavior identities assigned in the scope.
	KnownTypes int
	// Subjects is the number of subjects frozen.
	Subjects int
	// Warnings and Errors count the validation issues collected.
	Warnings int
	Errors   int
}

// NewSystem creates a coordinator for a new scope. The name appears in
// logs and panic messages.
func NewSystem(name string) *System {
	sys := &System{
		name:     name,
		ids:      make(map[reflect.Type]BehaviorID),
		registry: NewEventRegistry(),
	}
	sys.bus = NewEventBus(sys.registry)
	DefineEvent[BehaviorAttachEvent](sys.registry, "behavior_attach")
	DefineEvent[SubjectBakedEvent](sys.registry, "subject_baked")
	DefineEvent[ValidationEvent](sys.registry, "validation")
	return sys
}

// Name returns the scope name.
func (sys *System) Name() string { return sys.name }

// Events returns the scope's event registry.
func (sys *System) Events() *EventRegistry { return sys.registry }

// Bus returns the scope's event bus.
func (sys *System) Bus() *EventBus { return sys.bus }

// Baked reports whether the scope has been frozen.
func (sys *System) Baked() bool { return sys.baked }

// KnownTypes returns the number of behavior identities assigned so far.
func (sys *System) KnownTypes() int { return len(sys.order) }

// Adopt attaches a subject to the scope so its behaviors register here and
// it is included in the bake. A subject implementing Named keeps its own
// label; otherwise a unique one is generated from the type name.
func (sys *System) Adopt(s Subject) {
	sys.assertBootstrap("Adopt")
	defer sys.bootMu.Unlock()

	if sys.baked {
		panic("bacs: Adopt on baked scope " + sys.name)
	}

	label := subjectLabel(s)
	s.Behaviors().adopt(s, sys, label)
	sys.subjects = append(sys.subjects, s)
}

// Subjects returns the adopted subjects in adoption order.
func (sys *System) Subjects() []Subject {
	out := make([]Subject, len(sys.subjects))
	copy(out, sys.subjects)
	return out
}

// register assigns an identity to a concrete behavior type the first time
// it is seen in this scope and returns it on every later sighting.
func (sys *System) register(t reflect.Type) BehaviorID {
	if sys.baked {
		panic("bacs: behavior registration on baked scope " + sys.name)
	}
	if id, ok := sys.ids[t]; ok {
		return id
	}
	if len(sys.order) >= MaxBehaviors {
		panic(fmt.Sprintf("bacs: behavior type limit exceeded in scope %s (max %d)", sys.name, MaxBehaviors))
	}
	id := BehaviorID(len(sys.order))
	sys.ids[t] = id
	sys.order = append(sys.order, t)
	return id
}

// idOf returns the identity of a behavior type, if one was ever assigned
// anywhere in the scope.
func (sys *System) idOf(t reflect.Type) (BehaviorID, bool) {
	id, ok := sys.ids[t]
	return id, ok
}

// TypeName returns the name of the behavior type holding the given
// identity, or "" if the identity was never assigned.
func (sys *System) TypeName(id BehaviorID) string {
	if int(id) >= len(sys.order) {
		return ""
	}
	return typeName(sys.order[id])
}

// publishAttach emits the lifecycle event for a freshly attached behavior.
func (sys *System) publishAttach(s Subject, t reflect.Type, id BehaviorID) {
	PublishEvent(sys.bus, BehaviorAttachEvent{Subject: s, BehaviorType: t, ID: id})
}

// Bake freezes the scope. It runs exactly once:
//
//  1. Every behavior's OnInitialize hook runs, so aspect values settle into
//     plain fields before anything reads them.
//  2. Event wiring: the definition pass runs for all subjects, then the
//     subscription pass for all subjects. No subscription anywhere in the
//     scope can observe a missing definition.
//  3. Validation: every subject and behavior self-checks into v, with the
//     validator scope updated per call.
//  4. Every subject's behavior list is scattered into a scratch array of
//     the scope-wide identity count and stored as a trimmed copy sized to
//     that subject's highest identity.
//
// If validation collected any error, Bake returns an aggregate error
// carrying every message; the frozen state is still readable so callers
// can inspect it, but the dependent world should not start.
//
// Calling Bake twice, or mutating the scope afterwards, is a programming
// error and panics.
func (sys *System) Bake(v *Validator) (BakeReport, error) {
	sys.assertBootstrap("Bake")
	defer sys.bootMu.Unlock()

	if sys.baked {
		panic("bacs: scope " + sys.name + " baked twice")
	}
	if v == nil {
		v = NewValidator()
	}

	for _, s := range sys.subjects {
		s.Behaviors().initialize()
	}

	for _, s := range sys.subjects {
		s.Behaviors().defineEvents(sys.registry)
	}
	for _, s := range sys.subjects {
		s.Behaviors().subscribeEvents(sys.bus)
	}

	for _, s := range sys.subjects {
		s.Behaviors().Validate(v)
	}

	known := len(sys.order)
	scratch := make([]Behavior, known)
	for _, s := range sys.subjects {
		c := s.Behaviors()
		for i := range scratch {
			scratch[i] = nil
		}
		maxID := -1
		for i, b := range c.behaviors {
			id := c.ids[i]
			scratch[id] = b
			if int(id) > maxID {
				maxID = int(id)
			}
		}
		frozen := make([]Behavior, maxID+1)
		copy(frozen, scratch[:maxID+1])
		c.bake(frozen)
		PublishEvent(sys.bus, SubjectBakedEvent{Subject: s, Behaviors: len(c.behaviors)})
	}

	sys.baked = true

	report := BakeReport{
		KnownTypes: known,
		Subjects:   len(sys.subjects),
		Warnings:   v.counts().warnings,
		Errors:     v.counts().errors,
	}
	slog.Info("bacs: scope baked",
		"scope", sys.name,
		"types", report.KnownTypes,
		"subjects", report.Subjects,
		"warnings", report.Warnings,
		"errors", report.Errors)

	if v.HasErrors() {
		return report, fmt.Errorf("bacs: scope %s failed validation: %w", sys.name, v.Err())
	}
	return report, nil
}

// assertBootstrap enforces the single-bootstrap-goroutine contract. The
// lock is never contended in correct use; failing to take it means two
// goroutines are assembling the scope at once.
func (sys *System) assertBootstrap(op string) {
	if !sys.bootMu.TryLock() {
		panic("bacs: concurrent " + op + " on scope " + sys.name + "; assembly must stay on one bootstrap goroutine")
	}
}

// subjectLabel derives the diagnostic label for a subject.
func subjectLabel(s Subject) string {
	if n, ok := s.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name() + "-" + uuid.NewString()[:8]
}
