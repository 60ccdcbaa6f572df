package psd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noWarn(string, ...interface{}) {}

func TestPackBitsRoundTrip(t *testing.T) {
	// FE AA           repeat AA three times
	// 02 01 02 03     literal 01 02 03
	// FF 42           repeat 42 twice
	out, err := decodePackBits([]byte{0xFE, 0xAA, 0x02, 0x01, 0x02, 0x03, 0xFF, 0x42}, noWarn)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xAA, 0xAA, 0x01, 0x02, 0x03, 0x42, 0x42}, out)
}

func TestPackBitsChannel(t *testing.T) {
	var w psdWriter
	w.u16(8) // scanline length table, one row
	w.raw([]byte{0xFE, 0xAA, 0x02, 0x01, 0x02, 0x03, 0xFF, 0x42})

	ch := &Channel{
		ID:          0,
		Width:       8,
		Height:      1,
		Compression: CompressionRLE,
		Data:        w.Bytes(),
	}
	out, err := ch.RawData()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xAA, 0xAA, 0x01, 0x02, 0x03, 0x42, 0x42}, out)
}

func TestPackBitsNoOpMarker(t *testing.T) {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	out, err := decodePackBits([]byte{0x80, 0x00, 0x11}, warn)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x11}, out)
	assert.Len(t, warnings, 1)
}

func TestPackBitsTruncatedLiteral(t *testing.T) {
	_, err := decodePackBits([]byte{0x05, 0x01}, noWarn)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestPackBitsTruncatedRepeat(t *testing.T) {
	_, err := decodePackBits([]byte{0xFE}, noWarn)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestPackBitsChannelLengthMismatch(t *testing.T) {
	var w psdWriter
	w.u16(2)
	w.raw([]byte{0xFE, 0xAA}) // expands to 3 bytes

	ch := &Channel{
		Width:       2,
		Height:      1,
		Compression: CompressionRLE,
		Data:        w.Bytes(),
	}
	_, err := ch.RawData()
	assert.ErrorIs(t, err, ErrStructure)
}

func TestPackBitsChannelMissingTable(t *testing.T) {
	ch := &Channel{
		Width:       1,
		Height:      4,
		Compression: CompressionRLE,
		Data:        []byte{0x00}, // shorter than the 8-byte table
	}
	_, err := ch.RawData()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestPackBitsBounded(t *testing.T) {
	out, rest, err := decodePackBitsN([]byte{0xFE, 0xAA, 0x01, 0x01, 0x02}, 3, noWarn)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xAA, 0xAA}, out)
	assert.Equal(t, []byte{0x01, 0x01, 0x02}, rest)
}

func TestPackBitsBoundedOvershoot(t *testing.T) {
	_, _, err := decodePackBitsN([]byte{0x03, 1, 2, 3, 4}, 2, noWarn)
	assert.ErrorIs(t, err, ErrStructure)
}

func TestChannelRawDataMemoized(t *testing.T) {
	ch := &Channel{
		Width:       2,
		Height:      1,
		Compression: CompressionRaw,
		Data:        []byte{0x01, 0x02},
	}
	first, err := ch.RawData()
	require.NoError(t, err)
	second, err := ch.RawData()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestChannelZipUnsupported(t *testing.T) {
	for _, comp := range []Compression{CompressionZip, CompressionZipPrediction} {
		ch := &Channel{Compression: comp, Data: []byte{0x00}}
		_, err := ch.RawData()
		assert.ErrorIs(t, err, ErrUnsupportedCompression)
	}
}
