package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_WellFormed(t *testing.T) {
	assert.NoError(t, Validate("enemies"))
	assert.NoError(t, Validate("*"))
	assert.NoError(t, Validate("_internal"))
	assert.NoError(t, Validate("ui.fade"))
}

func TestValidate_Empty(t *testing.T) {
	err := Validate("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate_Blank(t *testing.T) {
	for _, s := range []string{" ", "\t", "  \n "} {
		err := Validate(s)
		require.Error(t, err, "tag %q should be rejected", s)
		assert.ErrorIs(t, err, ErrInvalid)
	}
}

func TestCanonical_NFC(t *testing.T) {
	// Composed vs decomposed "é" must canonicalize to the same key.
	composed := "café"
	decomposed := "café"
	assert.NotEqual(t, composed, decomposed)
	assert.Equal(t, Canonical(composed), Canonical(decomposed))
}

func TestCanonical_ASCIIUnchanged(t *testing.T) {
	assert.Equal(t, "enemies", Canonical("enemies"))
}

func TestCascades(t *testing.T) {
	assert.True(t, Cascades("enemies"))
	assert.True(t, Cascades("ui.fade"))

	assert.False(t, Cascades(Wildcard))
	assert.False(t, Cascades("_internal"))
	assert.False(t, Cascades(Untagged))
}
