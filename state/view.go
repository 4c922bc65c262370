package state

import (
	"github.com/disgoorg/snowflake/v2"
)

// View is a key-set projection over a backing store that owns the
// entities. Membership changes only touch this key set; the backing
// store's contents are never mutated through a view, and a key the
// backing store evicted simply reads as absent — a view never
// resurrects evicted data.
type View[T Entity] struct {
	backing *Store[T]
	order   []string
	keys    map[string]struct{}
}

func NewView[T Entity](backing *Store[T]) *View[T] {
	return &View[T]{
		backing: backing,
		keys:    make(map[string]struct{}),
	}
}

func (v *View[T]) Has(key string) bool {
	_, ok := v.keys[key]
	return ok
}

func (v *View[T]) Get(key string) (T, bool) {
	if _, ok := v.keys[key]; !ok {
		var zero T
		return zero, false
	}
	return v.backing.Get(key)
}

func (v *View[T]) Add(key string) {
	if _, ok := v.keys[key]; ok {
		return
	}
	v.keys[key] = struct{}{}
	v.order = append(v.order, key)
}

func (v *View[T]) AddID(id snowflake.ID) {
	v.Add(id.String())
}

func (v *View[T]) Remove(key string) {
	if _, ok := v.keys[key]; !ok {
		return
	}
	delete(v.keys, key)
	for i, k := range v.order {
		if k == key {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

// Len counts registered keys, including ones the backing store no
// longer holds.
func (v *View[T]) Len() int {
	return len(v.keys)
}

func (v *View[T]) Keys() []string {
	keys := make([]string, len(v.order))
	copy(keys, v.order)
	return keys
}

func (v *View[T]) Clear() {
	v.order = nil
	v.keys = make(map[string]struct{})
}

// ForEach visits the entities still resolvable through the backing
// store, in registration order.
func (v *View[T]) ForEach(f func(T) bool) {
	for _, key := range v.order {
		if e, ok := v.backing.Get(key); ok {
			if !f(e) {
				return
			}
		}
	}
}
