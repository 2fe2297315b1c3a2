package scrub

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/ByteMirror/gitscrub/gitcfg"
	"github.com/ByteMirror/gitscrub/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Initialize(false)
	defer log.Close()

	os.Exit(m.Run())
}

func TestPlanOrder(t *testing.T) {
	ctx := context.Background()
	store := gitcfg.NewMemoryStore()
	scrubber := New(store)

	ops, err := scrubber.Plan(ctx)
	require.NoError(t, err)

	// Empty store: the url alias slot expands to nothing, leaving 16 unsets
	// and the two identity sets.
	require.Len(t, ops, 18)
	assert.Equal(t, Operation{Kind: OpUnset, Key: "ore.excludesfile"}, ops[0])
	assert.Equal(t, Operation{Kind: OpUnset, Key: "filter.lfs.required"}, ops[15])
	assert.Equal(t, Operation{Kind: OpSet, Key: "user.email", Value: "anirudha0807@gmail.com"}, ops[16])
	assert.Equal(t, Operation{Kind: OpSet, Key: "user.name", Value: "Anirudha"}, ops[17])
}

func TestPlanExpandsURLAliases(t *testing.T) {
	ctx := context.Background()
	store := gitcfg.NewMemoryStoreWith(
		gitcfg.Entry{Key: "url.https://token@github.com/.insteadof", Value: "https://github.com/"},
		gitcfg.Entry{Key: "url.ssh://git@internal/.insteadof", Value: "https://internal/"},
		gitcfg.Entry{Key: "core.editor", Value: "vim"},
	)
	scrubber := New(store)

	ops, err := scrubber.Plan(ctx)
	require.NoError(t, err)

	// Both aliases occupy the slot after sendemail.chainreplyto, in store order.
	var keys []string
	for _, op := range ops {
		keys = append(keys, op.Key)
	}
	i := indexOf(t, keys, "sendemail.chainreplyto")
	assert.Equal(t, "url.https://token@github.com/.insteadof", keys[i+1])
	assert.Equal(t, "url.ssh://git@internal/.insteadof", keys[i+2])
	assert.Equal(t, "http.sslverify", keys[i+3])
	assert.NotContains(t, keys, "core.editor")
}

func indexOf(t *testing.T, keys []string, key string) int {
	t.Helper()
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	t.Fatalf("key %s not in plan", key)
	return -1
}

func TestRunOnPreloadedStore(t *testing.T) {
	ctx := context.Background()
	store := gitcfg.NewMemoryStoreWith(
		gitcfg.Entry{Key: "push.default", Value: "simple"},
		gitcfg.Entry{Key: "user.email", Value: "old@example.com"},
		gitcfg.Entry{Key: "core.editor", Value: "vim"},
	)
	scrubber := New(store)

	report, err := scrubber.Run(ctx)
	require.NoError(t, err)
	assert.False(t, report.Failed())

	_, err = store.Get(ctx, "push.default")
	assert.ErrorIs(t, err, gitcfg.ErrKeyNotFound)

	email, err := store.Get(ctx, "user.email")
	require.NoError(t, err)
	assert.Equal(t, "anirudha0807@gmail.com", email)

	// Untouched keys are never modified.
	editor, err := store.Get(ctx, "core.editor")
	require.NoError(t, err)
	assert.Equal(t, "vim", editor)
}

func TestRunOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := gitcfg.NewMemoryStore()
	scrubber := New(store)

	report, err := scrubber.Run(ctx)
	require.NoError(t, err)
	assert.False(t, report.Failed())

	// Every unset is absorbed as skipped; the listing holds exactly the identity.
	assert.Equal(t, []gitcfg.Entry{
		{Key: "user.email", Value: "anirudha0807@gmail.com"},
		{Key: "user.name", Value: "Anirudha"},
	}, report.Remaining)
	for _, res := range report.Results {
		if res.Op.Kind == OpUnset {
			assert.Equal(t, StatusSkipped, res.Status, "unset %s", res.Op.Key)
		} else {
			assert.Equal(t, StatusApplied, res.Status, "set %s", res.Op.Key)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := gitcfg.NewMemoryStoreWith(
		gitcfg.Entry{Key: "sendemail.smtppass", Value: "hunter2"},
		gitcfg.Entry{Key: "filter.lfs.required", Value: "true"},
	)
	scrubber := New(store)

	first, err := scrubber.Run(ctx)
	require.NoError(t, err)
	second, err := scrubber.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Remaining, second.Remaining)

	for _, key := range DefaultKeys() {
		if key == "url.*.insteadof" {
			continue
		}
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, gitcfg.ErrKeyNotFound, "key %s should be absent", key)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{
		MemoryStore: gitcfg.NewMemoryStoreWith(
			gitcfg.Entry{Key: "push.default", Value: "simple"},
			gitcfg.Entry{Key: "http.sslverify", Value: "false"},
		),
		failKey: "push.default",
	}
	scrubber := New(store)

	report, err := scrubber.Run(ctx)
	require.NoError(t, err)
	assert.True(t, report.Failed())

	// The failure on push.default did not stop the later unsets or the sets.
	_, err = store.Get(ctx, "http.sslverify")
	assert.ErrorIs(t, err, gitcfg.ErrKeyNotFound)
	name, err := store.Get(ctx, "user.name")
	require.NoError(t, err)
	assert.Equal(t, "Anirudha", name)
}

func TestRunWithOptions(t *testing.T) {
	ctx := context.Background()
	store := gitcfg.NewMemoryStoreWith(
		gitcfg.Entry{Key: "alias.st", Value: "status"},
	)
	scrubber := New(store,
		WithIdentity(Identity{Email: "dev@example.com"}),
		WithExtraKeys([]string{"alias.st"}),
	)

	report, err := scrubber.Run(ctx)
	require.NoError(t, err)

	_, err = store.Get(ctx, "alias.st")
	assert.ErrorIs(t, err, gitcfg.ErrKeyNotFound)

	// Partial identity override keeps the default name.
	assert.Equal(t, []gitcfg.Entry{
		{Key: "user.email", Value: "dev@example.com"},
		{Key: "user.name", Value: "Anirudha"},
	}, report.Remaining)
}

func TestListingContract(t *testing.T) {
	report := &Report{
		Remaining: []gitcfg.Entry{
			{Key: "user.email", Value: "anirudha0807@gmail.com"},
			{Key: "user.name", Value: "Anirudha"},
		},
	}

	listing := report.Listing()
	lines := strings.Split(strings.TrimRight(listing, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Remaining global git configurations:", lines[0])
	assert.Equal(t, "user.email=anirudha0807@gmail.com", lines[1])
	assert.Equal(t, "user.name=Anirudha", lines[2])
}

func TestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("dirty store", func(t *testing.T) {
		store := gitcfg.NewMemoryStoreWith(
			gitcfg.Entry{Key: "push.default", Value: "simple"},
			gitcfg.Entry{Key: "url.https://x@h/.insteadof", Value: "https://h/"},
			gitcfg.Entry{Key: "core.editor", Value: "vim"},
		)
		present, identityOK, err := New(store).Status(ctx)
		require.NoError(t, err)
		assert.False(t, identityOK)
		require.Len(t, present, 2)
		assert.Equal(t, "push.default", present[0].Key)
		assert.Equal(t, "url.https://x@h/.insteadof", present[1].Key)
	})

	t.Run("clean store", func(t *testing.T) {
		store := gitcfg.NewMemoryStoreWith(
			gitcfg.Entry{Key: "user.email", Value: "anirudha0807@gmail.com"},
			gitcfg.Entry{Key: "user.name", Value: "Anirudha"},
		)
		present, identityOK, err := New(store).Status(ctx)
		require.NoError(t, err)
		assert.True(t, identityOK)
		assert.Empty(t, present)
	})
}

// failingStore wraps MemoryStore and fails Unset for one key.
type failingStore struct {
	*gitcfg.MemoryStore
	failKey string
}

func (s *failingStore) Unset(ctx context.Context, key string) error {
	if key == s.failKey {
		return assert.AnError
	}
	return s.MemoryStore.Unset(ctx, key)
}
