package bacs

// Builder configures a scope before initialization. It is a convenience
// wrapper for the common bootstrap shape: create a System, run every
// registered subject factory against it, then bake once.
//
//	sys, report, err := bacs.NewBuilder("blocks").
//	    Subjects(registerStoneFamily).
//	    Subjects(registerWoodFamily).
//	    Init()
type Builder struct {
	name      string
	factories []func(*System)
	validator *Validator
}

// NewBuilder creates a builder for a scope with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Subjects adds a factory that constructs and adopts subjects. Factories
// run in registration order during Init, which fixes the identity
// assignment order across runs.
func (b *Builder) Subjects(factory func(*System)) *Builder {
	b.factories = append(b.factories, factory)
	return b
}

// Validator sets the validator used for the bake. Defaults to a fresh one.
func (b *Builder) Validator(v *Validator) *Builder {
	b.validator = v
	return b
}

// Init creates the System, runs all subject factories and bakes the scope.
// The returned error aggregates every validation error collected; the
// System is returned either way so diagnostics can inspect it.
func (b *Builder) Init() (*System, BakeReport, error) {
	sys := NewSystem(b.name)
	for _, factory := range b.factories {
		factory(sys)
	}
	report, err := sys.Bake(b.validator)
	return sys, report, err
}
