package psd

import (
	"fmt"
)

// BlendMode identifies one of the 28 layer blend modes.
type BlendMode uint8

const (
	BlendModePassthrough BlendMode = iota
	BlendModeNormal
	BlendModeDissolve
	BlendModeDarken
	BlendModeMultiply
	BlendModeColorBurn
	BlendModeLinearBurn
	BlendModeDarkerColor
	BlendModeLighten
	BlendModeScreen
	BlendModeColorDodge
	BlendModeLinearDodge
	BlendModeLighterColor
	BlendModeOverlay
	BlendModeSoftLight
	BlendModeHardLight
	BlendModeVividLight
	BlendModeLinearLight
	BlendModePinLight
	BlendModeHardMix
	BlendModeDifference
	BlendModeExclusion
	BlendModeSubtract
	BlendModeDivide
	BlendModeHue
	BlendModeSaturation
	BlendModeColor
	BlendModeLuminosity
)

var blendModeTable = []struct {
	mode BlendMode
	key  string
	name string
}{
	{BlendModePassthrough, "pass", "passthrough"},
	{BlendModeNormal, "norm", "normal"},
	{BlendModeDissolve, "diss", "dissolve"},
	{BlendModeDarken, "dark", "darken"},
	{BlendModeMultiply, "mul ", "multiply"},
	{BlendModeColorBurn, "idiv", "color_burn"},
	{BlendModeLinearBurn, "lbrn", "linear_burn"},
	{BlendModeDarkerColor, "dkCl", "darker_color"},
	{BlendModeLighten, "lite", "lighten"},
	{BlendModeScreen, "scrn", "screen"},
	{BlendModeColorDodge, "div ", "color_dodge"},
	{BlendModeLinearDodge, "lddg", "linear_dodge"},
	{BlendModeLighterColor, "lgCl", "lighter_color"},
	{BlendModeOverlay, "over", "overlay"},
	{BlendModeSoftLight, "sLit", "soft_light"},
	{BlendModeHardLight, "hLit", "hard_light"},
	{BlendModeVividLight, "vLit", "vivid_light"},
	{BlendModeLinearLight, "lLit", "linear_light"},
	{BlendModePinLight, "pLit", "pin_light"},
	{BlendModeHardMix, "hMix", "hard_mix"},
	{BlendModeDifference, "diff", "difference"},
	{BlendModeExclusion, "smud", "exclusion"},
	{BlendModeSubtract, "fsub", "subtract"},
	{BlendModeDivide, "fdiv", "divide"},
	{BlendModeHue, "hue ", "hue"},
	{BlendModeSaturation, "sat ", "saturation"},
	{BlendModeColor, "colr", "color"},
	{BlendModeLuminosity, "lum ", "luminosity"},
}

var (
	blendModeByKey = make(map[string]BlendMode, len(blendModeTable))
	blendModeKeys  = make(map[BlendMode]string, len(blendModeTable))
	blendModeNames = make(map[BlendMode]string, len(blendModeTable))
)

func init() {
	for _, entry := range blendModeTable {
		blendModeByKey[entry.key] = entry.mode
		blendModeKeys[entry.mode] = entry.key
		blendModeNames[entry.mode] = entry.name
	}
}

func blendModeFromKey(key string) (BlendMode, error) {
	mode, ok := blendModeByKey[key]
	if !ok {
		return 0, fmt.Errorf("%w: blend mode key %q", ErrOutOfRange, key)
	}
	return mode, nil
}

// Key returns the 4-byte file key for the blend mode.
func (b BlendMode) Key() string {
	return blendModeKeys[b]
}

// String returns the blend mode name.
func (b BlendMode) String() string {
	if name, ok := blendModeNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(b))
}
