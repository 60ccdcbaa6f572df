package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlendModeRoundTrip(t *testing.T) {
	require.Len(t, blendModeTable, 28)
	for _, entry := range blendModeTable {
		require.Len(t, entry.key, 4)
		mode, err := blendModeFromKey(entry.key)
		require.NoError(t, err)
		assert.Equal(t, entry.mode, mode)
		assert.Equal(t, entry.key, mode.Key())
	}
}

func TestBlendModeNames(t *testing.T) {
	assert.Equal(t, "normal", BlendModeNormal.String())
	assert.Equal(t, "color_burn", BlendModeColorBurn.String())
	assert.Equal(t, "passthrough", BlendModePassthrough.String())
	assert.Equal(t, "BlendMode(200)", BlendMode(200).String())
}

func TestBlendModeUnknownKey(t *testing.T) {
	_, err := blendModeFromKey("wxyz")
	assert.ErrorIs(t, err, ErrOutOfRange)
}
