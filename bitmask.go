package bacs

// Bitmask is a 256-bit bitmask used for tracking behavior presence on a
// subject. It supports up to 256 unique behavior identities.
type Bitmask [4]uint64

// Set sets the bit at the given identity.
func (m *Bitmask) Set(id BehaviorID) {
	m[id/64] |= 1 << (id % 64)
}

// Has returns true if the bit at the given identity is set.
func (m *Bitmask) Has(id BehaviorID) bool {
	return m[id/64]&(1<<(id%64)) != 0
}
