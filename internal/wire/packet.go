package wire

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/xtding233/lighting-backend/internal/lighting"
)

var ErrShortPacket = errors.New("lighting packet truncated inside a field block")

// Packet layout, big-endian:
//
//	f32 shadow_intensity
//	f32 saturation
//	f32 luminance_min, luminance_max, exposure_correction,
//	    speed_dark_bright, speed_bright_dark, center_weight_power
//	f32 volumetric_light_strength
//	u8  ambient luminance
//	u32 ambient color, ARGB
//
// Only the first block is mandatory. Peers that predate a block omit it and
// the decoder keeps the default for those fields.
const (
	baseBlockLen       = 8
	exposureBlockLen   = 24
	volumetricBlockLen = 4
	ambientBlockLen    = 5

	PacketLen = baseBlockLen + exposureBlockLen + volumetricBlockLen + ambientBlockLen
)

// AppendPacket appends the packet encoding of l to dst.
func AppendPacket(dst []byte, l lighting.Lighting) []byte {
	dst = appendF32(dst, l.ShadowIntensity)
	dst = appendF32(dst, l.Saturation)

	ex := l.Exposure
	dst = appendF32(dst, ex.LuminanceMin)
	dst = appendF32(dst, ex.LuminanceMax)
	dst = appendF32(dst, ex.ExposureCorrection)
	dst = appendF32(dst, ex.SpeedDarkBright)
	dst = appendF32(dst, ex.SpeedBrightDark)
	dst = appendF32(dst, ex.CenterWeightPower)

	dst = appendF32(dst, l.VolumetricLightStrength)

	dst = append(dst, l.AmbientLight.Luminance)
	return binary.BigEndian.AppendUint32(dst, l.AmbientLight.Color.ARGB())
}

func MarshalPacket(l lighting.Lighting) []byte {
	return AppendPacket(make([]byte, 0, PacketLen), l)
}

// UnmarshalPacket decodes a packet produced by AppendPacket or by an older
// peer that stops after a complete block. Trailing bytes are ignored.
func UnmarshalPacket(b []byte) (lighting.Lighting, error) {
	l := lighting.Default()
	r := reader{b: b}

	if len(b) < baseBlockLen {
		return l, ErrShortPacket
	}
	l.ShadowIntensity = r.f32()
	l.Saturation = r.f32()

	if r.done() {
		return l, nil
	}
	if r.left() < exposureBlockLen {
		return l, ErrShortPacket
	}
	l.Exposure = lighting.AutoExposure{
		LuminanceMin:       r.f32(),
		LuminanceMax:       r.f32(),
		ExposureCorrection: r.f32(),
		SpeedDarkBright:    r.f32(),
		SpeedBrightDark:    r.f32(),
		CenterWeightPower:  r.f32(),
	}

	if r.done() {
		return l, nil
	}
	if r.left() < volumetricBlockLen {
		return l, ErrShortPacket
	}
	l.VolumetricLightStrength = r.f32()

	if r.done() {
		return l, nil
	}
	if r.left() < ambientBlockLen {
		return l, ErrShortPacket
	}
	l.AmbientLight.Luminance = r.u8()
	l.AmbientLight.Color = lighting.ColorFromARGB(r.u32())

	return l, nil
}

func appendF32(dst []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(dst, math.Float32bits(v))
}

type reader struct {
	b   []byte
	off int
}

func (r *reader) left() int  { return len(r.b) - r.off }
func (r *reader) done() bool { return r.off >= len(r.b) }

func (r *reader) u8() uint8 {
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) u32() uint32 {
	v := binary.BigEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v
}

func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }
