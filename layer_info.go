package psd

import (
	"fmt"
)

// sectionDividerKey is the only additional-layer-information key the
// decoder interprets; every other key is preserved as a RawInfo.
const sectionDividerKey = "lsct"

// AdditionalInfo is one additional-layer-information block attached to
// a layer record.
type AdditionalInfo interface {
	// Key returns the block's 4-byte key.
	Key() string
}

// SectionDividerType classifies a section divider sentinel layer.
type SectionDividerType uint32

const (
	SectionDividerAnyOther     SectionDividerType = 0
	SectionDividerOpenFolder   SectionDividerType = 1
	SectionDividerClosedFolder SectionDividerType = 2
	SectionDividerBounding     SectionDividerType = 3
)

func sectionDividerTypeFromUint32(v uint32) (SectionDividerType, error) {
	if v > 3 {
		return 0, fmt.Errorf("%w: section divider type %d", ErrOutOfRange, v)
	}
	return SectionDividerType(v), nil
}

// SectionDividerSubType distinguishes normal groups from scene groups.
type SectionDividerSubType uint32

const (
	SectionSubTypeNormal     SectionDividerSubType = 0
	SectionSubTypeSceneGroup SectionDividerSubType = 1
)

func sectionDividerSubTypeFromUint32(v uint32) (SectionDividerSubType, error) {
	if v > 1 {
		return 0, fmt.Errorf("%w: section divider sub type %d", ErrOutOfRange, v)
	}
	return SectionDividerSubType(v), nil
}

// SectionDivider marks a layer as a group boundary in the flat layer
// list. BlendMode and SubType are present only when the payload
// carries them.
type SectionDivider struct {
	Type      SectionDividerType
	BlendMode *BlendMode
	SubType   *SectionDividerSubType
}

// Key returns "lsct".
func (s *SectionDivider) Key() string {
	return sectionDividerKey
}

// RawInfo preserves an uninterpreted additional-layer-information
// block as an opaque key/data pair.
type RawInfo struct {
	Signature string
	InfoKey   string
	Data      []byte
}

// Key returns the block's 4-byte key.
func (r *RawInfo) Key() string {
	return r.InfoKey
}

// parseAdditionalInfo decodes one block payload. The payload reader
// must be fully consumed.
func parseAdditionalInfo(signature, key string, data *reader) (AdditionalInfo, error) {
	if key != sectionDividerKey {
		return &RawInfo{
			Signature: signature,
			InfoKey:   key,
			Data:      data.Rest(),
		}, nil
	}

	dividerValue, err := data.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read section divider type: %w", err)
	}
	dividerType, err := sectionDividerTypeFromUint32(dividerValue)
	if err != nil {
		return nil, err
	}
	divider := &SectionDivider{Type: dividerType}
	if data.Empty() {
		return divider, nil
	}

	sig, err := data.ReadString(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read section divider blend mode signature: %w", err)
	}
	if sig != "8BIM" {
		return nil, fmt.Errorf("%w: invalid section divider signature %q", ErrSignature, sig)
	}
	blendKey, err := data.ReadString(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read section divider blend mode: %w", err)
	}
	blendMode, err := blendModeFromKey(blendKey)
	if err != nil {
		return nil, err
	}
	divider.BlendMode = &blendMode
	if data.Empty() {
		return divider, nil
	}

	subTypeValue, err := data.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read section divider sub type: %w", err)
	}
	subType, err := sectionDividerSubTypeFromUint32(subTypeValue)
	if err != nil {
		return nil, err
	}
	divider.SubType = &subType
	if !data.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes in section divider payload", ErrStructure, data.Len())
	}
	return divider, nil
}
