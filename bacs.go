// Package bacs provides a Behavior and Aspect Composition System for
// voxel content definitions built on Dragonfly servers.
//
// BACS is the assembly layer block and item type definitions are built on.
// It lets many small, independently authored behaviors attach themselves to
// a shared subject (typically a block type), cooperate on derived properties
// without referencing each other directly, and be frozen into dense,
// allocation-free lookup storage before the simulation starts:
//   - Subject abstraction for anything that hosts behaviors
//   - Behavior storage with idempotent Require and deferred RequireIfPresent
//   - Aspects: named multi-contributor property slots with pluggable
//     resolution strategies
//   - Scope-wide baking that wires events, validates content, and freezes
//     every subject into an identity-indexed array
//
// # Quick Start
//
// Assemble a scope during content bootstrap:
//
//	sys := bacs.NewSystem("blocks")
//
//	fence := &Fence{}
//	sys.Adopt(fence)
//	bacs.Require[Solid](fence)
//	bacs.Require[Connectable](fence)
//
//	report, err := sys.Bake(bacs.NewValidator())
//	if err != nil {
//	    // one or more behaviors reported configuration errors
//	}
//
// # Behaviors
//
// Behaviors are plain Go structs embedding bacs.Base:
//
//	type Solid struct {
//	    bacs.Base
//	    Opaque bool
//	}
//
//	solid := bacs.Require[Solid](subject)
//	solid = bacs.Get[Solid](subject) // nil if absent
//	ok := bacs.Is[Solid](subject)
//
// Construction always goes through Require; behaviors have no public
// constructor. Optional lifecycle hooks are discovered by interface:
//
//	OnAttach()                        // set up aspects, Require companions
//	OnInitialize()                    // pull final aspect values into fields
//	OnValidate(*bacs.Validator)       // self-check configuration
//	DefineEvents(*bacs.EventRegistry) // declare published event types
//	SubscribeToEvents(*bacs.EventBus) // attach handlers
//
// # Aspects
//
// Aspects let behaviors contribute to a shared property without knowing
// about each other:
//
//	type Connectable struct {
//	    bacs.Base
//	    Connects *bacs.Aspect[bacs.FaceSet, world.Block]
//	}
//
//	c.Connects = bacs.NewAspect[bacs.FaceSet, world.Block]("connects", c, bacs.Masking[bacs.FaceSet, world.Block]{})
//	c.Connects.ContributeConstant(bacs.FacesOf(cube.FaceNorth, cube.FaceSouth))
//
// # Baking
//
// System.Bake runs exactly once per scope. It initializes behaviors, wires
// events (all definitions before any subscription), validates every subject,
// and rewrites each subject's behavior list into a trimmed dense array so
// that Get and Is are O(1) for the lifetime of the process. All mutation
// after baking is a programming error and panics.
package bacs

// Version is the BACS version.
const Version = "1.0.0"
