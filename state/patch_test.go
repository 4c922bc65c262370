package state

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchTarget struct {
	Name    string       `json:"name"`
	Count   int          `json:"count"`
	OwnerID snowflake.ID `json:"owner_id"`
	At      time.Time    `json:"joined_at"`
}

func TestPatchLeavesAbsentFieldsUntouched(t *testing.T) {
	target := &patchTarget{Name: "before", Count: 7}

	require.NoError(t, patchInto(target, RawData{"name": "after"}))

	assert.Equal(t, "after", target.Name)
	assert.Equal(t, 7, target.Count, "absent keys must not reset fields")
}

func TestPatchDecodesSnowflakeStrings(t *testing.T) {
	target := &patchTarget{}

	require.NoError(t, patchInto(target, RawData{"owner_id": "175928847299117063"}))

	assert.Equal(t, snowflake.ID(175928847299117063), target.OwnerID)
}

func TestPatchDecodesTimestamps(t *testing.T) {
	target := &patchTarget{}

	require.NoError(t, patchInto(target, RawData{"joined_at": "2024-05-01T10:30:00Z"}))

	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), target.At)
}

func TestPatchWeaklyTypedNumbers(t *testing.T) {
	target := &patchTarget{}

	// decoded gateway payloads carry numbers as float64
	require.NoError(t, patchInto(target, RawData{"count": float64(3)}))

	assert.Equal(t, 3, target.Count)
}

func TestPatchEmptySnowflakeString(t *testing.T) {
	target := &patchTarget{OwnerID: 42}

	require.NoError(t, patchInto(target, RawData{"owner_id": ""}))

	assert.Equal(t, snowflake.ID(0), target.OwnerID)
}
