package psd

import (
	"fmt"
)

// ColorMode is the document color mode from the file header.
type ColorMode uint16

// Color modes
const (
	ColorModeBitmap       ColorMode = 0
	ColorModeGrayscale    ColorMode = 1
	ColorModeIndexed      ColorMode = 2
	ColorModeRGB          ColorMode = 3
	ColorModeCMYK         ColorMode = 4
	ColorModeMultichannel ColorMode = 7
	ColorModeDuotone      ColorMode = 8
	ColorModeLab          ColorMode = 9
)

var colorModeNames = map[ColorMode]string{
	ColorModeBitmap:       "Bitmap",
	ColorModeGrayscale:    "GrayScale",
	ColorModeIndexed:      "IndexedColor",
	ColorModeRGB:          "RGBColor",
	ColorModeCMYK:         "CMYKColor",
	ColorModeMultichannel: "Multichannel",
	ColorModeDuotone:      "Duotone",
	ColorModeLab:          "LabColor",
}

func colorModeFromUint16(v uint16) (ColorMode, error) {
	mode := ColorMode(v)
	if _, ok := colorModeNames[mode]; !ok {
		return 0, fmt.Errorf("%w: color mode %d", ErrOutOfRange, v)
	}
	return mode, nil
}

// Header represents the PSD file header.
type Header struct {
	Version  uint16
	Channels uint16
	Rows     uint32
	Cols     uint32
	Depth    uint16
	Mode     ColorMode
}

// Width returns the width of the document.
func (h *Header) Width() uint32 {
	return h.Cols
}

// Height returns the height of the document.
func (h *Header) Height() uint32 {
	return h.Rows
}

// ModeName returns the human-readable color mode name.
func (h *Header) ModeName() string {
	if name, ok := colorModeNames[h.Mode]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(h.Mode))
}

// IsRGB returns true if the color mode is RGB.
func (h *Header) IsRGB() bool {
	return h.Mode == ColorModeRGB
}

// IsCMYK returns true if the color mode is CMYK.
func (h *Header) IsCMYK() bool {
	return h.Mode == ColorModeCMYK
}

func parseHeader(r *reader) (*Header, error) {
	sig, err := r.ReadString(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read signature: %w", err)
	}
	if sig != "8BPS" {
		return nil, fmt.Errorf("%w: invalid PSD signature %q", ErrSignature, sig)
	}

	version, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != 1 {
		return nil, fmt.Errorf("%w: unsupported PSD version %d", ErrSignature, version)
	}

	reserved, err := r.ReadBytes(6)
	if err != nil {
		return nil, fmt.Errorf("failed to read reserved bytes: %w", err)
	}
	for _, b := range reserved {
		if b != 0 {
			return nil, fmt.Errorf("%w: reserved header bytes must be zero", ErrSignature)
		}
	}

	channels, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("failed to read channels: %w", err)
	}
	if channels < 1 || channels > 56 {
		return nil, fmt.Errorf("%w: channel count %d outside [1,56]", ErrConstraint, channels)
	}

	rows, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if rows < 1 || rows > 30000 {
		return nil, fmt.Errorf("%w: height %d outside [1,30000]", ErrConstraint, rows)
	}

	cols, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read cols: %w", err)
	}
	if cols < 1 || cols > 30000 {
		return nil, fmt.Errorf("%w: width %d outside [1,30000]", ErrConstraint, cols)
	}

	depth, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("failed to read depth: %w", err)
	}
	switch depth {
	case 1, 8, 16, 32:
	default:
		return nil, fmt.Errorf("%w: depth %d", ErrConstraint, depth)
	}

	modeValue, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("failed to read mode: %w", err)
	}
	mode, err := colorModeFromUint16(modeValue)
	if err != nil {
		return nil, err
	}

	return &Header{
		Version:  version,
		Channels: channels,
		Rows:     rows,
		Cols:     cols,
		Depth:    depth,
		Mode:     mode,
	}, nil
}
