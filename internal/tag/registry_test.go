package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stub is a minimal Taggable for registry tests.
type stub struct {
	tags []string
}

func (s *stub) Tags() []string { return s.tags }

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	obj := &stub{tags: []string{"enemies", "boss"}}

	require.NoError(t, r.Register(obj))

	assert.Equal(t, 1, r.Count("enemies"))
	assert.Equal(t, 1, r.Count("boss"))
	assert.Equal(t, 1, r.Count(Wildcard))
	assert.True(t, r.Exists("enemies"))
}

func TestRegistry_Register_NoTags(t *testing.T) {
	r := NewRegistry()

	err := r.Register(&stub{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 0, r.Count(Wildcard))
}

func TestRegistry_Register_MalformedTag(t *testing.T) {
	r := NewRegistry()

	err := r.Register(&stub{tags: []string{"ok", " "}})
	require.Error(t, err)
	// Nothing registered on failure, not even under the valid tag.
	assert.Equal(t, 0, r.Count("ok"))
	assert.Equal(t, 0, r.Count(Wildcard))
}

func TestRegistry_Register_Nil(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	a := &stub{tags: []string{"enemies"}}
	b := &stub{tags: []string{"enemies"}}
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))

	r.Unregister(a)

	assert.Equal(t, 1, r.Count("enemies"))
	assert.Equal(t, 1, r.Count(Wildcard))

	r.Unregister(b)

	// Empty buckets are pruned.
	assert.False(t, r.Exists("enemies"))
	assert.False(t, r.Exists(Wildcard))
	assert.Empty(t, r.Snapshot())
}

func TestRegistry_Unregister_Unknown(t *testing.T) {
	r := NewRegistry()
	// No-op, no panic.
	r.Unregister(&stub{tags: []string{"ghost"}})
	r.Unregister(nil)
}

func TestRegistry_Count_UnknownTag(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Count("nothing"))
	assert.False(t, r.Exists("nothing"))
}

func TestRegistry_CanonicalKeys(t *testing.T) {
	r := NewRegistry()
	// Any normalization form of the tag addresses the same bucket.
	obj := &stub{tags: []string{"café"}}
	require.NoError(t, r.Register(obj))

	assert.Equal(t, 1, r.Count(Canonical("café")))
}

func TestRegistry_Members_InsertionOrder(t *testing.T) {
	r := NewRegistry()
	a := &stub{tags: []string{"squad"}}
	b := &stub{tags: []string{"squad"}}
	c := &stub{tags: []string{"squad"}}
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))
	require.NoError(t, r.Register(c))

	members := r.Members("squad")
	require.Len(t, members, 3)
	assert.Same(t, a, members[0].(*stub))
	assert.Same(t, b, members[1].(*stub))
	assert.Same(t, c, members[2].(*stub))
}

func TestRegistry_Members_Copy(t *testing.T) {
	r := NewRegistry()
	a := &stub{tags: []string{"squad"}}
	require.NoError(t, r.Register(a))

	members := r.Members("squad")
	r.Unregister(a)

	// The returned slice is unaffected by later mutation.
	require.Len(t, members, 1)
	assert.Nil(t, r.Members("squad"))
}

func TestRegistry_Snapshot_WildcardFirst(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stub{tags: []string{"zebra"}}))
	require.NoError(t, r.Register(&stub{tags: []string{"ant", "zebra"}}))

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, TagCount{Tag: Wildcard, Count: 2}, snap[0])
	assert.Equal(t, TagCount{Tag: "ant", Count: 1}, snap[1])
	assert.Equal(t, TagCount{Tag: "zebra", Count: 2}, snap[2])
}
