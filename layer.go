package psd

import (
	"fmt"
	"sort"
	"sync"
)

// Compression is a per-channel or composite image compression code.
type Compression uint16

const (
	CompressionRaw           Compression = 0
	CompressionRLE           Compression = 1
	CompressionZip           Compression = 2
	CompressionZipPrediction Compression = 3
)

func compressionFromUint16(v uint16) (Compression, error) {
	if v > 3 {
		return 0, fmt.Errorf("%w: compression code %d", ErrOutOfRange, v)
	}
	return Compression(v), nil
}

// Clipping is the layer clipping mode.
type Clipping uint8

const (
	ClippingBase    Clipping = 0
	ClippingNonBase Clipping = 1
)

func clippingFromByte(v byte) (Clipping, error) {
	if v > 1 {
		return 0, fmt.Errorf("%w: clipping value %d", ErrOutOfRange, v)
	}
	return Clipping(v), nil
}

// LayerFlags is the layer record flag bitfield.
type LayerFlags uint8

const (
	LayerFlagTransparencyProtected LayerFlags = 1 << iota
	LayerFlagVisible
	LayerFlagObsolete
	LayerFlagPhotoshop5
	LayerFlagPixelDataIrrelevant

	layerFlagsAll = LayerFlagTransparencyProtected | LayerFlagVisible |
		LayerFlagObsolete | LayerFlagPhotoshop5 | LayerFlagPixelDataIrrelevant
)

func layerFlagsFromByte(v byte) (LayerFlags, error) {
	flags := LayerFlags(v)
	if flags&^layerFlagsAll != 0 {
		return 0, fmt.Errorf("%w: unknown layer flag bits 0x%02x", ErrOutOfRange, v)
	}
	return flags, nil
}

// MaskFlags is the layer mask flag bitfield.
type MaskFlags uint8

const (
	MaskFlagPositionRelative MaskFlags = 1 << iota
	MaskFlagDisabled
	MaskFlagInvertWhenBlending
	MaskFlagFromRenderingOtherData
	MaskFlagParametersApplied

	maskFlagsAll = MaskFlagPositionRelative | MaskFlagDisabled |
		MaskFlagInvertWhenBlending | MaskFlagFromRenderingOtherData | MaskFlagParametersApplied
)

func maskFlagsFromByte(v byte) (MaskFlags, error) {
	flags := MaskFlags(v)
	if flags&^maskFlagsAll != 0 {
		return 0, fmt.Errorf("%w: unknown mask flag bits 0x%02x", ErrOutOfRange, v)
	}
	return flags, nil
}

// Channel IDs with special meaning. Non-negative IDs index color
// channels.
const (
	ChannelTransparencyMask     int16 = -1
	ChannelUserSuppliedMask     int16 = -2
	ChannelRealUserSuppliedMask int16 = -3
)

// Channel carries one channel's compressed payload and its lazily
// decoded pixel plane.
type Channel struct {
	ID          int16
	Length      uint32
	Width       uint32
	Height      uint32
	Compression Compression
	Data        []byte

	once   sync.Once
	raw    []byte
	rawErr error
	warn   WarnFunc
}

// RawData returns the decompressed plane, width*height bytes. The
// plane is decoded on first access; all callers observe the same
// bytes.
func (c *Channel) RawData() ([]byte, error) {
	c.once.Do(func() {
		c.raw, c.rawErr = c.decode()
	})
	return c.raw, c.rawErr
}

func (c *Channel) decode() ([]byte, error) {
	warn := c.warn
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}
	switch c.Compression {
	case CompressionRaw:
		return c.Data, nil
	case CompressionRLE:
		// The payload starts with a table of per-scanline compressed
		// byte lengths, two bytes per row.
		table := int(c.Height) * 2
		if len(c.Data) < table {
			return nil, fmt.Errorf("%w: RLE scanline table needs %d bytes, have %d", ErrTruncated, table, len(c.Data))
		}
		out, err := decodePackBits(c.Data[table:], warn)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress channel %d: %w", c.ID, err)
		}
		want := int(c.Width) * int(c.Height)
		if len(out) != want {
			return nil, fmt.Errorf("%w: channel %d decompressed to %d bytes, want %d", ErrStructure, c.ID, len(out), want)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: channel %d uses %d", ErrUnsupportedCompression, c.ID, c.Compression)
	}
}

// LayerMaskOptionalData is the optional tail of the mask data frame:
// the real user mask parameters and bounds.
type LayerMaskOptionalData struct {
	RealFlags      MaskFlags
	RealBackground uint8
	Top            int32
	Left           int32
	Bottom         int32
	Right          int32
}

// LayerMaskData represents mask information for an individual layer.
type LayerMaskData struct {
	Top          int32
	Left         int32
	Bottom       int32
	Right        int32
	DefaultColor uint8
	Flags        MaskFlags
	Optional     *LayerMaskOptionalData
}

// Width returns the width of the mask.
func (m *LayerMaskData) Width() int32 {
	return m.Right - m.Left
}

// Height returns the height of the mask.
func (m *LayerMaskData) Height() int32 {
	return m.Bottom - m.Top
}

// Layer represents a single layer record plus its channel image data.
type Layer struct {
	Top    int32
	Left   int32
	Bottom int32
	Right  int32

	// Channels holds the color channels in ascending ID order once the
	// section has been parsed, followed by any channels with negative
	// IDs other than -1, -2 and -3. Mask channels live in the dedicated
	// slots below.
	Channels             []*Channel
	TransparencyMask     *Channel
	UserSuppliedMask     *Channel
	RealUserSuppliedMask *Channel

	BlendMode BlendMode
	Opacity   uint8
	Clipping  Clipping
	Flags     LayerFlags

	Mask           *LayerMaskData
	BlendingRanges []byte
	Name           string
	AdditionalInfo []AdditionalInfo
}

// Width returns the width of the layer.
func (l *Layer) Width() int32 {
	return l.Right - l.Left
}

// Height returns the height of the layer.
func (l *Layer) Height() int32 {
	return l.Bottom - l.Top
}

// Visible returns whether the layer is visible. The flag bit is set
// for hidden layers.
func (l *Layer) Visible() bool {
	return l.Flags&LayerFlagVisible == 0
}

// SectionDivider returns the layer's first section divider block, or
// nil for ordinary layers.
func (l *Layer) SectionDivider() *SectionDivider {
	for _, info := range l.AdditionalInfo {
		if divider, ok := info.(*SectionDivider); ok {
			return divider
		}
	}
	return nil
}

// IsFolder returns whether this layer carries a section divider block.
// A divider of type SectionDividerAnyOther also counts, although the
// tree builder treats such a layer as an ordinary layer.
func (l *Layer) IsFolder() bool {
	return l.SectionDivider() != nil
}

func parseLayerRecord(r *reader) (*Layer, error) {
	l := &Layer{}

	var err error
	if l.Top, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if l.Left, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if l.Bottom, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if l.Right, err = r.ReadInt32(); err != nil {
		return nil, err
	}

	channels, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	l.Channels = make([]*Channel, channels)
	for i := range l.Channels {
		id, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		length, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		// Mask channels get their real bounds during normalization.
		l.Channels[i] = &Channel{
			ID:     id,
			Length: length,
			Width:  uint32(l.Right - l.Left),
			Height: uint32(l.Bottom - l.Top),
		}
	}

	sig, err := r.ReadString(4)
	if err != nil {
		return nil, err
	}
	if sig != "8BIM" {
		return nil, fmt.Errorf("%w: invalid blend mode signature %q", ErrSignature, sig)
	}
	blendKey, err := r.ReadString(4)
	if err != nil {
		return nil, err
	}
	if l.BlendMode, err = blendModeFromKey(blendKey); err != nil {
		return nil, err
	}

	if l.Opacity, err = r.ReadByte(); err != nil {
		return nil, err
	}
	clipping, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if l.Clipping, err = clippingFromByte(clipping); err != nil {
		return nil, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if l.Flags, err = layerFlagsFromByte(flags); err != nil {
		return nil, err
	}
	if err := r.Skip(1); err != nil { // filler
		return nil, err
	}

	extraLen, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	extra, err := r.Sub(int(extraLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read layer extra data: %w", err)
	}

	maskLen, err := extra.ReadUint32()
	if err != nil {
		return nil, err
	}
	maskData, err := extra.Sub(int(maskLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read layer mask data: %w", err)
	}
	if l.Mask, err = parseLayerMaskData(maskData); err != nil {
		return nil, err
	}

	rangesLen, err := extra.ReadUint32()
	if err != nil {
		return nil, err
	}
	if l.BlendingRanges, err = extra.ReadBytes(int(rangesLen)); err != nil {
		return nil, fmt.Errorf("failed to read blending ranges: %w", err)
	}

	nameLen, err := extra.ReadByte()
	if err != nil {
		return nil, err
	}
	if l.Name, err = extra.ReadString(int(nameLen)); err != nil {
		return nil, err
	}
	if err := extra.Skip(layerNamePadding(int(nameLen))); err != nil {
		return nil, err
	}

	for !extra.Empty() {
		info, err := parseAdditionalInfoBlock(extra)
		if err != nil {
			return nil, err
		}
		l.AdditionalInfo = append(l.AdditionalInfo, info)
	}

	return l, nil
}

func parseAdditionalInfoBlock(r *reader) (AdditionalInfo, error) {
	sig, err := r.ReadString(4)
	if err != nil {
		return nil, err
	}
	if sig != "8BIM" && sig != "8B64" {
		return nil, fmt.Errorf("%w: invalid additional info signature %q", ErrSignature, sig)
	}
	key, err := r.ReadString(4)
	if err != nil {
		return nil, err
	}
	length, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	data, err := r.Sub(int(length))
	if err != nil {
		return nil, fmt.Errorf("failed to read additional info %q: %w", key, err)
	}
	info, err := parseAdditionalInfo(sig, key, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse additional info %q: %w", key, err)
	}
	return info, nil
}

// parseLayerMaskData decodes the mask data frame. A zero-length frame
// means no mask; a 20-byte frame carries two bytes of padding after
// the flags; longer frames carry the real user mask block.
func parseLayerMaskData(r *reader) (*LayerMaskData, error) {
	if r.Empty() {
		return nil, nil
	}

	m := &LayerMaskData{}
	var err error
	if m.Top, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if m.Left, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if m.Bottom, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if m.Right, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if m.DefaultColor, err = r.ReadByte(); err != nil {
		return nil, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if m.Flags, err = maskFlagsFromByte(flags); err != nil {
		return nil, err
	}

	if r.Len() == 2 {
		// padding
		return m, nil
	}

	opt := &LayerMaskOptionalData{}
	realFlags, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if opt.RealFlags, err = maskFlagsFromByte(realFlags); err != nil {
		return nil, err
	}
	if opt.RealBackground, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if opt.Top, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if opt.Left, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if opt.Bottom, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if opt.Right, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	m.Optional = opt
	return m, nil
}

// normalizeChannels partitions a record's declared channel list into
// the color list (ascending ID) and the dedicated mask slots, and
// stamps mask channels with their own bounds from the mask data.
func normalizeChannels(l *Layer, warn WarnFunc) {
	var colors []*Channel
	var masks []*Channel
	for _, ch := range l.Channels {
		if ch.ID >= 0 {
			colors = append(colors, ch)
		} else {
			masks = append(masks, ch)
		}
	}
	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].ID < colors[j].ID
	})

	for _, ch := range masks {
		switch ch.ID {
		case ChannelTransparencyMask:
			l.TransparencyMask = ch
		case ChannelUserSuppliedMask:
			l.UserSuppliedMask = ch
		case ChannelRealUserSuppliedMask:
			l.RealUserSuppliedMask = ch
		default:
			colors = append(colors, ch)
		}
	}
	l.Channels = colors

	if l.Mask == nil {
		if l.UserSuppliedMask != nil {
			warn("layer %q: user-supplied mask channel without mask data", l.Name)
		}
		if l.RealUserSuppliedMask != nil {
			warn("layer %q: real user mask channel without mask data", l.Name)
		}
		return
	}

	if l.UserSuppliedMask != nil {
		l.UserSuppliedMask.Width = uint32(l.Mask.Right - l.Mask.Left)
		l.UserSuppliedMask.Height = uint32(l.Mask.Bottom - l.Mask.Top)
	} else {
		warn("layer %q: mask data without user-supplied mask channel", l.Name)
	}

	if opt := l.Mask.Optional; opt != nil {
		if l.RealUserSuppliedMask != nil {
			l.RealUserSuppliedMask.Width = uint32(opt.Right - opt.Left)
			l.RealUserSuppliedMask.Height = uint32(opt.Bottom - opt.Top)
		} else {
			warn("layer %q: real user mask parameters without real mask channel", l.Name)
		}
	} else if l.RealUserSuppliedMask != nil {
		warn("layer %q: real user mask channel without mask parameters", l.Name)
	}
}

// allChannels visits the color channels and any populated mask slots.
func (l *Layer) allChannels() []*Channel {
	channels := make([]*Channel, 0, len(l.Channels)+3)
	channels = append(channels, l.Channels...)
	for _, ch := range []*Channel{l.TransparencyMask, l.UserSuppliedMask, l.RealUserSuppliedMask} {
		if ch != nil {
			channels = append(channels, ch)
		}
	}
	return channels
}
