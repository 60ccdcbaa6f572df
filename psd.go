package psd

import (
	"errors"
	"fmt"
)

// Parse error kinds. Every error returned by Parse wraps one of these
// or ErrTruncated, so callers can classify failures with errors.Is.
var (
	ErrTruncated              = errors.New("unexpected end of data")
	ErrSignature              = errors.New("signature mismatch")
	ErrOutOfRange             = errors.New("value out of range")
	ErrConstraint             = errors.New("length constraint violated")
	ErrStructure              = errors.New("inconsistent structure")
	ErrUnsupportedCompression = errors.New("unsupported compression")
)

// WarnFunc receives soft diagnostics that do not fail the parse, such
// as mask/channel mismatches and PackBits no-op markers.
type WarnFunc func(format string, args ...interface{})

// Psd represents a parsed Photoshop document. Decoded byte slices
// alias the input buffer until Detach is called. A Psd is not safe for
// concurrent use.
type Psd struct {
	header    *Header
	colorMode *ColorModeData
	resources *ResourceSection
	layerMask *LayerMask
	image     *Image

	warnings []string
	detached bool
}

// Parse decodes a complete PSD file from the buffer. Soft diagnostics
// are collected on the returned document.
func Parse(data []byte) (*Psd, error) {
	return ParseWithWarnings(data, nil)
}

// ParseWithWarnings decodes a complete PSD file from the buffer,
// routing soft diagnostics to warn. A nil warn collects them on the
// returned document instead.
func ParseWithWarnings(data []byte, warn WarnFunc) (*Psd, error) {
	p := &Psd{}
	if warn == nil {
		warn = func(format string, args ...interface{}) {
			p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
		}
	}

	r := newReader(data)

	header, err := parseHeader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	p.header = header

	colorMode, err := parseColorMode(r, header)
	if err != nil {
		return nil, fmt.Errorf("failed to parse color mode data: %w", err)
	}
	p.colorMode = colorMode

	resources, err := parseResources(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse resources: %w", err)
	}
	p.resources = resources

	layerMask, err := parseLayerMask(r, header, warn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer mask section: %w", err)
	}
	p.layerMask = layerMask

	image, err := parseImageData(r, header, warn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse image data: %w", err)
	}
	p.image = image

	return p, nil
}

// Header returns the PSD header.
func (p *Psd) Header() *Header {
	return p.header
}

// ColorMode returns the color mode data section.
func (p *Psd) ColorMode() *ColorModeData {
	return p.colorMode
}

// Resources returns the image resources section.
func (p *Psd) Resources() *ResourceSection {
	return p.resources
}

// LayerMask returns the layer and mask information section.
func (p *Psd) LayerMask() *LayerMask {
	return p.layerMask
}

// Layers returns the flat layer list in file order, bottom to top.
func (p *Psd) Layers() []*Layer {
	return p.layerMask.Layers
}

// Tree returns the layer tree structure, children ordered top-down.
func (p *Psd) Tree() *Node {
	return p.layerMask.Tree()
}

// Image returns the composite image data.
func (p *Psd) Image() *Image {
	return p.image
}

// Warnings returns the soft diagnostics collected during parsing and
// lazy decompression.
func (p *Psd) Warnings() []string {
	return p.warnings
}

// Detach promotes every slice that aliases the input buffer to an
// owned copy, forcing all lazily decoded planes first so the detached
// document carries decompressed pixel data. After Detach the document
// no longer references the buffer given to Parse. Detach is
// idempotent; it fails only if a plane cannot be decoded, e.g. a
// ZIP-compressed channel.
func (p *Psd) Detach() error {
	if p.detached {
		return nil
	}

	if _, err := p.image.RawData(); err != nil {
		return err
	}
	for _, layer := range p.layerMask.Layers {
		for _, ch := range layer.allChannels() {
			if _, err := ch.RawData(); err != nil {
				return err
			}
		}
	}

	p.colorMode.data = cloneBytes(p.colorMode.data)
	for _, block := range p.resources.Blocks {
		block.Data = cloneBytes(block.Data)
	}
	for _, layer := range p.layerMask.Layers {
		layer.BlendingRanges = cloneBytes(layer.BlendingRanges)
		for _, info := range layer.AdditionalInfo {
			if raw, ok := info.(*RawInfo); ok {
				raw.Data = cloneBytes(raw.Data)
			}
		}
		for _, ch := range layer.allChannels() {
			ch.Data = cloneBytes(ch.Data)
			ch.raw = cloneBytes(ch.raw)
		}
	}
	p.layerMask.GlobalMaskInfo = cloneBytes(p.layerMask.GlobalMaskInfo)
	p.layerMask.AdditionalLayerInfo = cloneBytes(p.layerMask.AdditionalLayerInfo)
	p.image.Data = cloneBytes(p.image.Data)
	for i, plane := range p.image.planes {
		p.image.planes[i] = cloneBytes(plane)
	}

	p.detached = true
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
