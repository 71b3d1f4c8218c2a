package value

import "sync"

// IdentityMap is an insertion-ordered map backing the IDDICT wire family
// (spec.md §4.4; Encode writes Go's built-in maps as Dict records, so
// IDDICT round-trips through this wrapper type instead — SPEC_FULL.md
// OPEN QUESTIONS #4). Keys are compared with Go's ==, as in a built-in
// map: pointer and channel keys (and interfaces holding them) match by
// identity, while strings, numbers and structs match by value.
//
// It is exported as jlcodec.IdentityMap via a type alias at the module's
// top level so callers never import package value directly.
type IdentityMap[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	order   []K
}

// NewIdentityMap creates an empty IdentityMap.
func NewIdentityMap[K comparable, V any]() *IdentityMap[K, V] {
	return &IdentityMap[K, V]{entries: make(map[K]V)}
}

func (m *IdentityMap[K, V]) Get(k K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.entries[k]

	return v, ok
}

func (m *IdentityMap[K, V]) Set(k K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[k]; !exists {
		m.order = append(m.order, k)
	}
	m.entries[k] = v
}

func (m *IdentityMap[K, V]) Delete(k K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[k]; !exists {
		return
	}
	delete(m.entries, k)
	for i, key := range m.order {
		if key == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *IdentityMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.order)
}

// Range calls fn for each entry in insertion order, stopping early if fn
// returns false.
func (m *IdentityMap[K, V]) Range(fn func(k K, v V) bool) {
	m.mu.Lock()
	keys := make([]K, len(m.order))
	copy(keys, m.order)
	m.mu.Unlock()

	for _, k := range keys {
		v, ok := m.Get(k)
		if !ok {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// identityMapLike is satisfied by every *IdentityMap[K, V] instantiation
// regardless of K/V, letting Encode dispatch to it without knowing the
// concrete type parameters.
type identityMapLike interface {
	Len() int
	IdentityMapRange(fn func(k, v any) bool)
}

// IdentityMapRange is identityMapLike's type-erased form of Range.
func (m *IdentityMap[K, V]) IdentityMapRange(fn func(k, v any) bool) {
	m.Range(func(k K, v V) bool { return fn(k, v) })
}
