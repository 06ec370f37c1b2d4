package memory

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetThenGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "claude-sonnet-4-20250514"))
	require.NoError(t, store.Set("llm.model", "claude-opus-4"))

	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "claude-opus-4", val)

	_, ok = store.Get("llm.missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("str", "value"))
	require.NoError(t, store.Set("int", 800))
	require.NoError(t, store.Set("int64", int64(5)))
	require.NoError(t, store.Set("float", 0.5))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("str"), "value"},
		{"string of int", store.GetString("int"), ""},
		{"int", store.GetInt("int"), 800},
		{"int from int64", store.GetInt("int64"), 5},
		{"int from float", store.GetInt("float"), 0},
		{"int missing", store.GetInt("nope"), 0},
		{"float", store.GetFloat("float"), 0.5},
		{"float from int", store.GetFloat("int"), 800.0},
		{"float of string", store.GetFloat("str"), 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_UnsetAndPath(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("llm.model", "m"))

	require.NoError(t, store.Unset("llm.model"))
	require.NoError(t, store.Unset("llm.model"))

	_, ok := store.Get("llm.model")
	assert.False(t, ok)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SnapshotIsACopy(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("a", "1"))

	snap := store.Snapshot()
	snap["a"] = "changed"

	assert.Equal(t, "1", store.GetString("a"))
}

func TestConfigStore_Replace(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("old", "x"))

	store.Replace(map[string]any{"new": "y"})
	_, ok := store.Get("old")
	assert.False(t, ok)
	assert.Equal(t, "y", store.GetString("new"))

	store.Replace(nil)
	assert.Empty(t, store.Snapshot())
	require.NoError(t, store.Set("after", "z"))
}

func TestConfigStore_UpdateDiscardsOnError(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("a", "1"))

	err := store.Update(func(v map[string]any) error {
		v["a"] = "2"
		return errors.New("disk full")
	})
	require.Error(t, err)
	assert.Equal(t, "1", store.GetString("a"))

	require.NoError(t, store.Update(func(v map[string]any) error {
		v["a"] = "3"
		return nil
	}))
	assert.Equal(t, "3", store.GetString("a"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("index.max_results", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("index.max_results")
		}()
	}
	wg.Wait()

	_, ok := store.Get("index.max_results")
	assert.True(t, ok)
}
