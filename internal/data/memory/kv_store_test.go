package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	t.Run("GetMissing", func(t *testing.T) {
		value, found, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("SetGetOverwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`)))
		require.NoError(t, store.Set(ctx, "k", []byte(`{"a":2}`)))

		value, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `{"a":2}`, string(value))
		assert.Equal(t, 1, store.Len())
	})

	t.Run("ValuesAreCopied", func(t *testing.T) {
		input := []byte(`"x"`)
		require.NoError(t, store.Set(ctx, "copy", input))
		input[1] = 'y'

		value, _, err := store.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, `"x"`, string(value))

		value[1] = 'z'
		again, _, _ := store.Get(ctx, "copy")
		assert.Equal(t, `"x"`, string(again))
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "k"))
		require.NoError(t, store.Remove(ctx, "k"), "removing an absent key is not an error")
		_, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, store.Set(cancelled, "k", []byte("1")), context.Canceled)
		_, _, err := store.Get(cancelled, "k")
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, store.Remove(cancelled, "k"), context.Canceled)
	})
}
