package bacs

import (
	"math/bits"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// FaceSet is a bitmask over the six block faces, the typical value type for
// Masking-strategy aspects such as connection sides of fences, walls and
// panes. Bit i corresponds to cube.Face(i).
type FaceSet uint8

// FacesOf builds a FaceSet from the given faces.
func FacesOf(faces ...cube.Face) FaceSet {
	var f FaceSet
	for _, face := range faces {
		f |= 1 << uint(face)
	}
	return f
}

// AllFaces is the FaceSet containing every block face.
func AllFaces() FaceSet {
	return FacesOf(cube.Faces()...)
}

// Has reports whether the set contains the given face.
func (f FaceSet) Has(face cube.Face) bool {
	return f&(1<<uint(face)) != 0
}

// With returns the set extended with the given face.
func (f FaceSet) With(face cube.Face) FaceSet {
	return f | 1<<uint(face)
}

// Without returns the set with the given face removed.
func (f FaceSet) Without(face cube.Face) FaceSet {
	return f &^ (1 << uint(face))
}

// Len returns the number of faces in the set.
func (f FaceSet) Len() int {
	return bits.OnesCount8(uint8(f))
}

// Faces returns the contained faces in cube.Face order.
func (f FaceSet) Faces() []cube.Face {
	out := make([]cube.Face, 0, f.Len())
	for _, face := range cube.Faces() {
		if f.Has(face) {
			out = append(out, face)
		}
	}
	return out
}
