package bacs

import (
	"reflect"
	"strings"
	"testing"
)

// pulseEvent is defined by pulseEmitter and consumed by pulseListener,
// possibly on a different subject.
type pulseEvent struct {
	Source Subject
}

type pulseEmitter struct{ Base }

func (p *pulseEmitter) DefineEvents(r *EventRegistry) {
	DefineEvent[pulseEvent](r, "pulse")
}

type pulseListener struct {
	Base
	pulses int
}

func (l *pulseListener) SubscribeToEvents(bus *EventBus) {
	SubscribeEvent(bus, func(pulseEvent) { l.pulses++ })
}

// brittle reports a scope-failing configuration issue; squeaky only warns.
type brittle struct{ Base }

func (b *brittle) OnValidate(v *Validator) {
	v.ReportError("no connection strength configured")
}

type squeaky struct{ Base }

func (s *squeaky) OnValidate(v *Validator) {
	v.ReportWarning("using default sound set")
}

// settler resolves an aspect into a plain field during OnInitialize.
type settler struct {
	Base
	hard  *Aspect[bool, struct{}]
	final bool
}

func (s *settler) OnAttach() {
	s.hard = NewAspect[bool, struct{}]("hardened", s, LogicalOr[struct{}]{})
}

func (s *settler) OnInitialize() {
	s.final = s.hard.Resolve(false, struct{}{})
}

func TestIdentityFirstSeenOrder(t *testing.T) {
	assemble := func() *System {
		sys := NewSystem("test")
		blk := newBlock(sys, "stone")
		Require[solid](blk)
		Require[flammable](blk)
		Require[replaceable](blk)
		return sys
	}

	a, b := assemble(), assemble()
	for i, typ := range []reflect.Type{
		reflect.TypeFor[solid](),
		reflect.TypeFor[flammable](),
		reflect.TypeFor[replaceable](),
	} {
		idA, okA := a.idOf(typ)
		idB, okB := b.idOf(typ)
		if !okA || !okB {
			t.Fatalf("%v not registered in both scopes", typ)
		}
		if idA != BehaviorID(i) || idB != BehaviorID(i) {
			t.Fatalf("%v assigned ids %d/%d, want %d in both runs", typ, idA, idB, i)
		}
	}
}

func TestIdentityScopedPerSystem(t *testing.T) {
	blocks := NewSystem("blocks")
	items := NewSystem("items")

	Require[flammable](newBlock(blocks, "planks"))
	Require[solid](newBlock(items, "ingot"))

	idBlocks, _ := blocks.idOf(reflect.TypeFor[flammable]())
	idItems, _ := items.idOf(reflect.TypeFor[solid]())
	if idBlocks != 0 || idItems != 0 {
		t.Fatalf("first-seen ids = %d/%d, want 0 in each scope", idBlocks, idItems)
	}
	if _, ok := items.idOf(reflect.TypeFor[flammable]()); ok {
		t.Fatal("flammable leaked into the items scope")
	}
}

func TestEventDefinitionsPrecedeSubscriptions(t *testing.T) {
	sys := NewSystem("test")

	// The listener's subject is adopted before the emitter's, so a naive
	// per-subject wiring would subscribe before the event exists.
	listenerBlk := newBlock(sys, "listener")
	listener := Require[pulseListener](listenerBlk)

	emitterBlk := newBlock(sys, "emitter")
	Require[pulseEmitter](emitterBlk)

	if _, err := sys.Bake(nil); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	PublishEvent(sys.Bus(), pulseEvent{Source: emitterBlk})
	PublishEvent(sys.Bus(), pulseEvent{Source: emitterBlk})
	if listener.pulses != 2 {
		t.Fatalf("listener saw %d pulses, want 2", listener.pulses)
	}
}

func TestSelfDefinedEventSubscription(t *testing.T) {
	sys := NewSystem("test")
	blk := newBlock(sys, "pulser")
	Require[pulseEmitter](blk)
	listener := Require[pulseListener](blk)

	if _, err := sys.Bake(nil); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	PublishEvent(sys.Bus(), pulseEvent{Source: blk})
	if listener.pulses != 1 {
		t.Fatalf("listener saw %d pulses, want 1", listener.pulses)
	}
}

func TestBehaviorAttachEvents(t *testing.T) {
	sys := NewSystem("test")

	var attached []reflect.Type
	SubscribeEvent(sys.Bus(), func(ev BehaviorAttachEvent) {
		attached = append(attached, ev.BehaviorType)
	})

	blk := newBlock(sys, "stone")
	Require[solid](blk)
	Require[flammable](blk)

	want := []reflect.Type{reflect.TypeFor[solid](), reflect.TypeFor[flammable]()}
	if !reflect.DeepEqual(attached, want) {
		t.Fatalf("attach events = %v, want %v", attached, want)
	}
}

func TestValidationCollectsEveryIssue(t *testing.T) {
	sys := NewSystem("test")
	bad := newBlock(sys, "bad_fence")
	Require[brittle](bad)
	Require[squeaky](bad)

	v := NewValidator()
	report, err := sys.Bake(v)
	if err == nil {
		t.Fatal("Bake succeeded despite a validation error")
	}
	if report.Errors != 1 || report.Warnings != 1 {
		t.Fatalf("report counts errors=%d warnings=%d, want 1/1", report.Errors, report.Warnings)
	}
	if !strings.Contains(err.Error(), "no connection strength configured") {
		t.Fatalf("aggregate error missing message: %v", err)
	}

	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("collected %d issues, want 2", len(issues))
	}
	if issues[0].Scope != "bad_fence/brittle" {
		t.Fatalf("issue scope = %q, want bad_fence/brittle", issues[0].Scope)
	}
	// The scope still froze: all collected issues surface in one pass and
	// the caller decides not to start the world.
	if !sys.Baked() {
		t.Fatal("scope not frozen after failed validation")
	}
}

func TestValidationEventCounts(t *testing.T) {
	sys := NewSystem("test")
	Require[squeaky](newBlock(sys, "noisy"))
	Require[solid](newBlock(sys, "quiet"))

	counts := map[string]int{}
	SubscribeEvent(sys.Bus(), func(ev ValidationEvent) {
		counts[ev.Subject.Behaviors().Label()] = ev.Warnings
	})

	if _, err := sys.Bake(nil); err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if counts["noisy"] != 1 || counts["quiet"] != 0 {
		t.Fatalf("per-subject warning counts = %v", counts)
	}
}

func TestInitializeRunsBeforeFreeze(t *testing.T) {
	sys := NewSystem("test")
	blk := newBlock(sys, "stone")
	s := Require[settler](blk)
	s.hard.ContributeConstant(true)

	if _, err := sys.Bake(nil); err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if !s.final {
		t.Fatal("OnInitialize did not settle the aspect value")
	}
}

func TestBakeReport(t *testing.T) {
	sys := NewSystem("test")
	Require[solid](newBlock(sys, "a"))
	blk := newBlock(sys, "b")
	Require[solid](blk)
	Require[flammable](blk)

	report, err := sys.Bake(nil)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if report.KnownTypes != 2 {
		t.Fatalf("KnownTypes = %d, want 2", report.KnownTypes)
	}
	if report.Subjects != 2 {
		t.Fatalf("Subjects = %d, want 2", report.Subjects)
	}
}

// TestAssemblyScenario is the end-to-end flow: A first, then B whose
// attachment declares a watcher on A; because A already exists, C is
// required immediately and its initializer runs once. After baking, every
// lookup is an O(1) indexed read.
func TestAssemblyScenario(t *testing.T) {
	sys := NewSystem("blocks")
	blk := newBlock(sys, "fence")

	Require[alpha](blk)
	Require[beta](blk)

	report, err := sys.Bake(nil)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if report.KnownTypes != 3 {
		t.Fatalf("KnownTypes = %d, want 3", report.KnownTypes)
	}

	for i, typ := range []reflect.Type{
		reflect.TypeFor[alpha](),
		reflect.TypeFor[beta](),
		reflect.TypeFor[gamma](),
	} {
		id, ok := sys.idOf(typ)
		if !ok || id != BehaviorID(i) {
			t.Fatalf("%v id = %d (ok=%v), want %d", typ, id, ok, i)
		}
	}

	if Get[alpha](blk) == nil || Get[beta](blk) == nil || Get[gamma](blk) == nil {
		t.Fatal("post-bake lookup lost a behavior")
	}
	if Get[unused](blk) != nil {
		t.Fatal("Get for an unregistered type = non-nil, want nil")
	}
	if blk.initCount != 1 {
		t.Fatalf("initializer ran %d times, want 1", blk.initCount)
	}
}

func TestBuilderInit(t *testing.T) {
	sys, report, err := NewBuilder("blocks").
		Subjects(func(sys *System) {
			Require[solid](newBlock(sys, "stone"))
		}).
		Subjects(func(sys *System) {
			Require[flammable](newBlock(sys, "planks"))
		}).
		Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !sys.Baked() {
		t.Fatal("builder did not bake the scope")
	}
	if report.Subjects != 2 || report.KnownTypes != 2 {
		t.Fatalf("report = %+v", report)
	}
}

func TestSubjectLabelGenerated(t *testing.T) {
	sys := NewSystem("test")
	blk := &blockDef{} // no name: label is generated
	sys.Adopt(blk)
	label := blk.Label()
	if !strings.HasPrefix(label, "blockDef-") || len(label) <= len("blockDef-") {
		t.Fatalf("generated label = %q", label)
	}
}
