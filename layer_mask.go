package psd

import (
	"fmt"
)

// LayerMask represents the layer and mask information section.
type LayerMask struct {
	// Layers holds the flat layer list in file order, bottom to top.
	Layers []*Layer
	// LayerCount is the raw signed count from the file. A negative
	// count flags the first alpha channel as merged-image
	// transparency.
	LayerCount int16

	GlobalMaskInfo      []byte
	AdditionalLayerInfo []byte

	tree *Node
}

// FirstAlphaIsTransparency reports whether the first alpha channel
// holds transparency data for the merged image.
func (lm *LayerMask) FirstAlphaIsTransparency() bool {
	return lm.LayerCount < 0
}

// Tree returns the reconstructed layer tree, top-down.
func (lm *LayerMask) Tree() *Node {
	return lm.tree
}

func parseLayerMask(r *reader, header *Header, warn WarnFunc) (*LayerMask, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read layer mask length: %w", err)
	}

	lm := &LayerMask{}
	if length == 0 {
		lm.tree = newRootNode(header, nil)
		return lm, nil
	}

	section, err := r.Sub(int(length))
	if err != nil {
		return nil, fmt.Errorf("failed to read layer mask section: %w", err)
	}

	if err := lm.parseLayerInfo(section, warn); err != nil {
		return nil, fmt.Errorf("failed to parse layer info: %w", err)
	}

	globalLen, err := section.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read global layer mask info length: %w", err)
	}
	if lm.GlobalMaskInfo, err = section.ReadBytes(int(globalLen)); err != nil {
		return nil, fmt.Errorf("failed to read global layer mask info: %w", err)
	}

	// Everything left in the envelope is trailing additional layer
	// information, kept verbatim.
	lm.AdditionalLayerInfo = section.Rest()

	forest, err := buildLayerTree(lm.Layers, warn)
	if err != nil {
		return nil, err
	}
	lm.tree = newRootNode(header, forest)

	return lm, nil
}

func (lm *LayerMask) parseLayerInfo(r *reader, warn WarnFunc) error {
	length, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	info, err := r.Sub(int(length))
	if err != nil {
		return err
	}

	if lm.LayerCount, err = info.ReadInt16(); err != nil {
		return err
	}
	count := int(lm.LayerCount)
	if count < 0 {
		count = -count
	}

	lm.Layers = make([]*Layer, count)
	for i := range lm.Layers {
		layer, err := parseLayerRecord(info)
		if err != nil {
			return fmt.Errorf("failed to parse layer %d: %w", i, err)
		}
		lm.Layers[i] = layer
	}

	// Channel image data follows the records: one blob per channel, in
	// record order then declared channel order, each prefixed with its
	// compression code.
	for _, layer := range lm.Layers {
		for _, ch := range layer.Channels {
			blob, err := info.Sub(int(ch.Length))
			if err != nil {
				return fmt.Errorf("failed to read channel data for layer %q: %w", layer.Name, err)
			}
			code, err := blob.ReadUint16()
			if err != nil {
				return fmt.Errorf("failed to read compression for channel %d of layer %q: %w", ch.ID, layer.Name, err)
			}
			if ch.Compression, err = compressionFromUint16(code); err != nil {
				return err
			}
			ch.Data = blob.Rest()
			ch.warn = warn
		}
	}

	if !info.Empty() {
		return fmt.Errorf("%w: %d unconsumed bytes in layer info sub-frame", ErrStructure, info.Len())
	}

	for _, layer := range lm.Layers {
		normalizeChannels(layer, warn)
	}

	return nil
}
