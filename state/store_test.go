package state

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	key  string
	name string
}

func (e *testEntity) Key() string              { return e.key }
func (e *testEntity) patch(data RawData) error { return patchInto(e, data) }
func (e *testEntity) snapshot() Entity         { cp := *e; return &cp }

func TestStoreEvictsOldestFirst(t *testing.T) {
	s := NewStore[*testEntity](2)
	s.Set("a", &testEntity{key: "a"})
	s.Set("b", &testEntity{key: "b"})
	s.Set("c", &testEntity{key: "c"})

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = s.Get("b")
	assert.True(t, ok)
	_, ok = s.Get("c")
	assert.True(t, ok)
}

func TestStoreOverwriteKeepsInsertionOrder(t *testing.T) {
	s := NewStore[*testEntity](2)
	s.Set("a", &testEntity{key: "a"})
	s.Set("b", &testEntity{key: "b"})
	// rewriting "a" must not refresh its eviction position
	s.Set("a", &testEntity{key: "a", name: "rewritten"})
	s.Set("c", &testEntity{key: "c"})

	_, ok := s.Get("a")
	assert.False(t, ok, "overwrite must not protect an entry from eviction")
	_, ok = s.Get("b")
	assert.True(t, ok)
}

func TestStoreZeroLimitDropsWrites(t *testing.T) {
	s := NewStore[*testEntity](0)
	s.Set("a", &testEntity{key: "a"})

	assert.Equal(t, 0, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.False(t, s.Delete("a"))
}

func TestStoreUnlimited(t *testing.T) {
	s := NewStore[*testEntity](Unlimited)
	for i := 0; i < 1000; i++ {
		key := snowflake.ID(i + 1).String()
		s.Set(key, &testEntity{key: key})
	}
	assert.Equal(t, 1000, s.Len())
}

func TestStoreKeysInInsertionOrder(t *testing.T) {
	s := NewStore[*testEntity](Unlimited)
	s.Set("b", &testEntity{key: "b"})
	s.Set("a", &testEntity{key: "a"})
	s.Set("c", &testEntity{key: "c"})
	s.Delete("a")

	assert.Equal(t, []string{"b", "c"}, s.Keys())
}

func TestStoreForEachStopsEarly(t *testing.T) {
	s := NewStore[*testEntity](Unlimited)
	s.Set("a", &testEntity{key: "a"})
	s.Set("b", &testEntity{key: "b"})

	visited := 0
	s.ForEach(func(e *testEntity) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestStoreResolve(t *testing.T) {
	s := NewStore[*testEntity](Unlimited)
	e := &testEntity{key: "123456789"}
	s.Set(e.Key(), e)

	byKey, ok := s.Resolve("123456789")
	require.True(t, ok)
	assert.Same(t, e, byKey)

	byID, ok := s.Resolve(snowflake.ID(123456789))
	require.True(t, ok)
	assert.Same(t, e, byID)

	byValue, ok := s.Resolve(e)
	require.True(t, ok)
	assert.Same(t, e, byValue)
}
