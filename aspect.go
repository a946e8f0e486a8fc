package bacs

// Contribution is one behavior's input to an aspect: a pure transform from
// the accumulated value (or the seed, depending on the strategy) to a new
// value. Contributions must be side-effect free and must not assume how
// often or when they are called; aspects are resolved on demand, any number
// of times, with no caching.
type Contribution[V, C any] func(original V, ctx C) V

// Aspect is a named property slot owned by one host behavior that any
// number of cooperating behaviors may contribute to without knowing about
// each other. Contributions are kept in registration order; a Strategy
// decides how they combine into the final value.
type Aspect[V, C any] struct {
	name     string
	host     Behavior
	strategy Strategy[V, C]
	contribs []Contribution[V, C]
}

// NewAspect creates an aspect on the given host behavior with the given
// combination strategy.
func NewAspect[V, C any](name string, host Behavior, strategy Strategy[V, C]) *Aspect[V, C] {
	if host == nil {
		panic("bacs: aspect " + name + " created without a host behavior")
	}
	if strategy == nil {
		panic("bacs: aspect " + name + " created without a strategy")
	}
	return &Aspect[V, C]{name: name, host: host, strategy: strategy}
}

// Name returns the aspect's name.
func (a *Aspect[V, C]) Name() string { return a.name }

// Host returns the behavior that owns the aspect.
func (a *Aspect[V, C]) Host() Behavior { return a.host }

// Contributions returns the number of registered contributions.
func (a *Aspect[V, C]) Contributions() int { return len(a.contribs) }

// ContributeConstant registers a contribution that always yields value,
// ignoring the accumulated input.
func (a *Aspect[V, C]) ContributeConstant(value V) {
	a.contribute(func(V, C) V { return value })
}

// ContributeFunction registers a transforming contribution.
func (a *Aspect[V, C]) ContributeFunction(f Contribution[V, C]) {
	if f == nil {
		panic("bacs: nil contribution on aspect " + a.name)
	}
	a.contribute(f)
}

func (a *Aspect[V, C]) contribute(f Contribution[V, C]) {
	if limit := a.strategy.Cap(); limit > 0 && len(a.contribs) >= limit {
		panic("bacs: contributor limit exceeded on aspect " + a.name + " of " + behaviorName(a.host))
	}
	a.contribs = append(a.contribs, f)
}

// Resolve folds the seed value through every contribution in registration
// order under the aspect's strategy. With no contributions the seed is
// returned unchanged. Resolution is pull-based and synchronous.
func (a *Aspect[V, C]) Resolve(original V, ctx C) V {
	if len(a.contribs) == 0 {
		return original
	}
	return a.strategy.Resolve(original, ctx, a.contribs)
}

// Bind captures a seed and context for later pulls, typically from an
// OnInitialize hook that wants a reusable handle on the settled value.
func (a *Aspect[V, C]) Bind(original V, ctx C) Resolved[V, C] {
	return Resolved[V, C]{aspect: a, original: original, ctx: ctx}
}

// Resolved is a pull-based handle on an aspect with a fixed seed and
// context. Value re-resolves on every call; nothing is cached.
type Resolved[V, C any] struct {
	aspect   *Aspect[V, C]
	original V
	ctx      C
}

// Value resolves the bound aspect.
func (r Resolved[V, C]) Value() V {
	return r.aspect.Resolve(r.original, r.ctx)
}
