package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewProjectsBackingStore(t *testing.T) {
	backing := NewStore[*testEntity](Unlimited)
	backing.Set("a", &testEntity{key: "a"})
	backing.Set("b", &testEntity{key: "b"})

	v := NewView(backing)
	v.Add("a")

	_, ok := v.Get("a")
	assert.True(t, ok)
	_, ok = v.Get("b")
	assert.False(t, ok, "keys outside the view must read as absent")
}

func TestViewNeverResurrectsEvicted(t *testing.T) {
	backing := NewStore[*testEntity](2)
	backing.Set("a", &testEntity{key: "a"})
	backing.Set("b", &testEntity{key: "b"})

	v := NewView(backing)
	v.Add("a")
	v.Add("b")

	// evicts "a" from the backing store; the view still lists the key
	backing.Set("c", &testEntity{key: "c"})

	assert.True(t, v.Has("a"))
	_, ok := v.Get("a")
	assert.False(t, ok, "view must not resurrect evicted entries")

	var seen []string
	v.ForEach(func(e *testEntity) bool {
		seen = append(seen, e.Key())
		return true
	})
	assert.Equal(t, []string{"b"}, seen)
}

func TestViewRemoveAndClear(t *testing.T) {
	backing := NewStore[*testEntity](Unlimited)
	backing.Set("a", &testEntity{key: "a"})
	backing.Set("b", &testEntity{key: "b"})

	v := NewView(backing)
	v.Add("a")
	v.Add("b")
	v.Remove("a")

	assert.False(t, v.Has("a"))
	assert.Equal(t, 1, v.Len())
	_, ok := backing.Get("a")
	assert.True(t, ok, "removal from a view must not touch the backing store")

	v.Clear()
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 2, backing.Len())
}

func TestViewAddIsIdempotent(t *testing.T) {
	backing := NewStore[*testEntity](Unlimited)
	backing.Set("a", &testEntity{key: "a"})

	v := NewView(backing)
	v.Add("a")
	v.Add("a")

	assert.Equal(t, 1, v.Len())
	assert.Equal(t, []string{"a"}, v.Keys())
}
