package gitcfg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitKey(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		section    string
		subsection string
		option     string
		ok         bool
	}{
		{"two part", "user.email", "user", "", "email", true},
		{"three part", "filter.lfs.clean", "filter", "lfs", "clean", true},
		{"url subsection with dots", "url.https://x@github.com.insteadof", "url", "https://x@github.com", "insteadof", true},
		{"no dot", "user", "", "", "", false},
		{"trailing dot", "user.", "", "", "", false},
		{"leading dot", ".email", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section, subsection, option, ok := SplitKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.section, section)
			assert.Equal(t, tt.subsection, subsection)
			assert.Equal(t, tt.option, option)
		})
	}
}

func TestJoinKeyRoundTrip(t *testing.T) {
	for _, key := range []string{"user.email", "filter.lfs.required", "url.https://github.com.insteadof"} {
		section, subsection, option, ok := SplitKey(key)
		require.True(t, ok)
		assert.Equal(t, key, JoinKey(section, subsection, option))
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Get(ctx, "user.email")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, "user.email", "a@b.c"))
		value, err := store.Get(ctx, "user.email")
		require.NoError(t, err)
		assert.Equal(t, "a@b.c", value)
	})

	t.Run("set overwrites in place", func(t *testing.T) {
		store := NewMemoryStoreWith(
			Entry{Key: "core.editor", Value: "vim"},
			Entry{Key: "user.email", Value: "old@b.c"},
		)
		require.NoError(t, store.Set(ctx, "core.editor", "nano"))

		entries, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, Entry{Key: "core.editor", Value: "nano"}, entries[0])
	})

	t.Run("unset missing key", func(t *testing.T) {
		store := NewMemoryStore()
		assert.ErrorIs(t, store.Unset(ctx, "push.default"), ErrKeyNotFound)
	})

	t.Run("unset removes only the named key", func(t *testing.T) {
		store := NewMemoryStoreWith(
			Entry{Key: "push.default", Value: "simple"},
			Entry{Key: "core.editor", Value: "vim"},
		)
		require.NoError(t, store.Unset(ctx, "push.default"))

		entries, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "core.editor", entries[0].Key)
	})

	t.Run("list copies state", func(t *testing.T) {
		store := NewMemoryStoreWith(Entry{Key: "user.name", Value: "x"})
		entries, err := store.List(ctx)
		require.NoError(t, err)
		entries[0].Value = "mutated"

		fresh, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "x", fresh[0].Value)
	})
}
