package psd

import (
	"fmt"
	"sync"
)

// Image is the composite image data section. Geometry and channel
// count are inherited from the header; planes are decoded lazily.
type Image struct {
	Compression Compression
	Data        []byte

	width    uint32
	height   uint32
	channels uint16

	once      sync.Once
	planes    [][]byte
	planesErr error
	warn      WarnFunc
}

// Width returns the image width.
func (img *Image) Width() uint32 {
	return img.width
}

// Height returns the image height.
func (img *Image) Height() uint32 {
	return img.height
}

// Channels returns the channel count.
func (img *Image) Channels() uint16 {
	return img.channels
}

// RawData returns the decompressed per-channel planes, width*height
// bytes each, in header channel order. Planes are decoded on first
// access; all callers observe the same bytes.
func (img *Image) RawData() ([][]byte, error) {
	img.once.Do(func() {
		img.planes, img.planesErr = img.decode()
	})
	return img.planes, img.planesErr
}

func (img *Image) decode() ([][]byte, error) {
	warn := img.warn
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}
	planeSize := int(img.width) * int(img.height)

	switch img.Compression {
	case CompressionRaw:
		var planes [][]byte
		data := img.Data
		for len(data) > 0 {
			if len(data) < planeSize {
				return nil, fmt.Errorf("%w: raw image data channel needs %d bytes, have %d", ErrTruncated, planeSize, len(data))
			}
			planes = append(planes, data[:planeSize])
			data = data[planeSize:]
		}
		return planes, nil

	case CompressionRLE:
		// One scanline length table per channel, concatenated, then
		// all channels' compressed streams concatenated.
		table := int(img.channels) * int(img.height) * 2
		if len(img.Data) < table {
			return nil, fmt.Errorf("%w: RLE scanline tables need %d bytes, have %d", ErrTruncated, table, len(img.Data))
		}
		data := img.Data[table:]
		planes := make([][]byte, 0, img.channels)
		for ch := uint16(0); ch < img.channels; ch++ {
			plane, rest, err := decodePackBitsN(data, planeSize, warn)
			if err != nil {
				return nil, fmt.Errorf("failed to decompress image data channel %d: %w", ch, err)
			}
			planes = append(planes, plane)
			data = rest
		}
		return planes, nil

	default:
		return nil, fmt.Errorf("%w: image data uses %d", ErrUnsupportedCompression, img.Compression)
	}
}

func parseImageData(r *reader, header *Header, warn WarnFunc) (*Image, error) {
	code, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("failed to read image data compression: %w", err)
	}
	compression, err := compressionFromUint16(code)
	if err != nil {
		return nil, err
	}

	return &Image{
		Compression: compression,
		Data:        r.Rest(),
		width:       header.Width(),
		height:      header.Height(),
		channels:    header.Channels,
		warn:        warn,
	}, nil
}
