package psd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildImageDocument(channels uint16, height, width uint32, mode ColorMode, body func(w *psdWriter)) []byte {
	var w psdWriter
	writeHeader(&w, channels, height, width, 8, mode)
	w.u32(0)
	w.u32(0)
	w.u32(0)
	body(&w)
	return w.Bytes()
}

func TestImageDataRawSplit(t *testing.T) {
	data := buildImageDocument(2, 2, 2, ColorModeGrayscale, func(w *psdWriter) {
		w.u16(uint16(CompressionRaw))
		w.raw([]byte{1, 2, 3, 4})
		w.raw([]byte{5, 6, 7, 8})
	})

	psd, err := Parse(data)
	require.NoError(t, err)

	img := psd.Image()
	assert.Equal(t, uint32(2), img.Width())
	assert.Equal(t, uint32(2), img.Height())
	assert.Equal(t, uint16(2), img.Channels())
	assert.Equal(t, CompressionRaw, img.Compression)

	planes, err := img.RawData()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}}, planes)
}

func TestImageDataRawTruncated(t *testing.T) {
	data := buildImageDocument(2, 2, 2, ColorModeGrayscale, func(w *psdWriter) {
		w.u16(uint16(CompressionRaw))
		w.raw([]byte{1, 2, 3, 4, 5})
	})

	psd, err := Parse(data)
	require.NoError(t, err)
	_, err = psd.Image().RawData()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestImageDataRLE(t *testing.T) {
	data := buildImageDocument(2, 2, 2, ColorModeGrayscale, func(w *psdWriter) {
		w.u16(uint16(CompressionRLE))
		// Scanline length tables, one per channel then per row.
		w.u16(3) // channel 0 row 0: 01 AA BB
		w.u16(2) // channel 0 row 1: FF CC
		w.u16(2) // channel 1 row 0: FF 10
		w.u16(3) // channel 1 row 1: 01 20 30
		w.raw([]byte{0x01, 0xAA, 0xBB, 0xFF, 0xCC})
		w.raw([]byte{0xFF, 0x10, 0x01, 0x20, 0x30})
	})

	psd, err := Parse(data)
	require.NoError(t, err)

	planes, err := psd.Image().RawData()
	require.NoError(t, err)
	require.Len(t, planes, 2)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xCC}, planes[0])
	assert.Equal(t, []byte{0x10, 0x10, 0x20, 0x30}, planes[1])
}

func TestImageDataRLEMemoized(t *testing.T) {
	data := buildImageDocument(1, 1, 2, ColorModeGrayscale, func(w *psdWriter) {
		w.u16(uint16(CompressionRLE))
		w.u16(2)
		w.raw([]byte{0xFF, 0x33})
	})

	psd, err := Parse(data)
	require.NoError(t, err)

	first, err := psd.Image().RawData()
	require.NoError(t, err)
	second, err := psd.Image().RawData()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, [][]byte{{0x33, 0x33}}, first)
}

func TestImageDataZipUnsupported(t *testing.T) {
	data := buildImageDocument(1, 1, 1, ColorModeGrayscale, func(w *psdWriter) {
		w.u16(uint16(CompressionZipPrediction))
		w.raw([]byte{0x00, 0x01})
	})

	psd, err := Parse(data)
	require.NoError(t, err)
	_, err = psd.Image().RawData()
	assert.ErrorIs(t, err, ErrUnsupportedCompression)
}

func TestImageDataBadCompressionCode(t *testing.T) {
	data := buildImageDocument(1, 1, 1, ColorModeGrayscale, func(w *psdWriter) {
		w.u16(9)
	})
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
