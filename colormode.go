package psd

import (
	"fmt"
)

// ColorModeData is the color mode data section. The bytes are opaque:
// a 256-entry RGB palette for indexed documents, duotone specification
// bytes for duotone documents, empty otherwise.
type ColorModeData struct {
	data []byte
}

// Data returns the raw section bytes.
func (c *ColorModeData) Data() []byte {
	return c.data
}

func parseColorMode(r *reader, header *Header) (*ColorModeData, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read color mode data length: %w", err)
	}

	switch header.Mode {
	case ColorModeIndexed:
		if length != 768 {
			return nil, fmt.Errorf("%w: indexed color mode data must be 768 bytes, got %d", ErrConstraint, length)
		}
	case ColorModeDuotone:
		// any length
	default:
		if length != 0 {
			return nil, fmt.Errorf("%w: color mode data must be empty for mode %s, got %d bytes", ErrConstraint, header.ModeName(), length)
		}
	}

	data, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, fmt.Errorf("failed to read color mode data: %w", err)
	}
	return &ColorModeData{data: data}, nil
}
