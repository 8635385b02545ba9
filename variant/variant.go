/*
Package variant computes the durable identity of a shader variant.

A material package holds one compiled program per combination of shading
model, pipeline stage and variant flags. Runtime loaders address these
programs by a single 32-bit key:

	key = model<<16 | stage<<8 | flags

The key is written to disk, so Encode must never change for a given triple.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package variant

import (
	"errors"
	"fmt"
	"math"
)

// ShadingModel is the backend-oriented shader model of a variant
// (e.g., desktop or mobile feature level). It occupies the upper 16 bits of a Key.
type ShadingModel uint16

// Well-known shading models.
const (
	ModelUnknown ShadingModel = 0
	ModelMobile  ShadingModel = 1
	ModelDesktop ShadingModel = 2
)

func (m ShadingModel) String() string {
	switch m {
	case ModelMobile:
		return "mobile"
	case ModelDesktop:
		return "desktop"
	case ModelUnknown:
		return "unknown"
	}
	return fmt.Sprintf("model(%d)", uint16(m))
}

// Stage is a pipeline stage.
type Stage uint8

// Pipeline stages.
const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// Flags is the 8-bit variant field (lighting, skinning, fog, etc.).
// Its bits are owned by the material system and not interpreted here.
type Flags uint8

// Key is the 32-bit identifier of a shader variant.
type Key uint32

// Encode maps a (model, stage, flags) triple to its Key.
func Encode(model ShadingModel, stage Stage, flags Flags) Key {
	return Key(uint32(model)<<16 | uint32(stage)<<8 | uint32(flags))
}

// ErrOutOfRange is returned by EncodeChecked for fields not fitting their bit width.
var ErrOutOfRange = errors.New("variant field out of range")

// EncodeChecked is Encode for untyped integers. It fails if model does not fit
// 16 bits, or if stage or flags do not fit 8 bits.
func EncodeChecked(model, stage, flags int) (Key, error) {
	if model < 0 || model > math.MaxUint16 {
		return 0, fmt.Errorf("%w: shading model %d", ErrOutOfRange, model)
	}
	if stage < 0 || stage > math.MaxUint8 {
		return 0, fmt.Errorf("%w: stage %d", ErrOutOfRange, stage)
	}
	if flags < 0 || flags > math.MaxUint8 {
		return 0, fmt.Errorf("%w: flags %d", ErrOutOfRange, flags)
	}
	return Encode(ShadingModel(model), Stage(stage), Flags(flags)), nil
}

// Decode splits k into its fields.
func (k Key) Decode() (ShadingModel, Stage, Flags) {
	return ShadingModel(k >> 16), Stage(k >> 8 & 0xff), Flags(k & 0xff)
}

// Model returns the shading model part of k.
func (k Key) Model() ShadingModel {
	return ShadingModel(k >> 16)
}

// Stage returns the pipeline stage part of k.
func (k Key) Stage() Stage {
	return Stage(k >> 8 & 0xff)
}

// Flags returns the variant flags part of k.
func (k Key) Flags() Flags {
	return Flags(k & 0xff)
}

func (k Key) String() string {
	return fmt.Sprintf("0x%08x", uint32(k))
}

// Describe returns a human readable form of k, e.g. "desktop/fragment/0x03".
func (k Key) Describe() string {
	m, s, f := k.Decode()
	return fmt.Sprintf("%s/%s/0x%02x", m, s, uint8(f))
}
