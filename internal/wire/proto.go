package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/xtding233/lighting-backend/internal/lighting"
)

// Protobuf field numbers.
//
//	message Lighting {
//	  AutoExposure exposure = 1;
//	  AmbientLight ambient_light = 2;
//	  fixed32 shadow_intensity = 3;          // float bits
//	  fixed32 saturation = 4;
//	  fixed32 volumetric_light_strength = 5;
//	}
//	message AutoExposure { fixed32 luminance_min = 1; ... center_weight_power = 6; }
//	message AmbientLight { uint32 luminance = 1; fixed32 color_argb = 2; }
const (
	fieldExposure     protowire.Number = 1
	fieldAmbientLight protowire.Number = 2
	fieldShadow       protowire.Number = 3
	fieldSaturation   protowire.Number = 4
	fieldVolumetric   protowire.Number = 5

	fieldLuminanceMin       protowire.Number = 1
	fieldLuminanceMax       protowire.Number = 2
	fieldExposureCorrection protowire.Number = 3
	fieldSpeedDarkBright    protowire.Number = 4
	fieldSpeedBrightDark    protowire.Number = 5
	fieldCenterWeightPower  protowire.Number = 6

	fieldAmbientLuminance protowire.Number = 1
	fieldAmbientColor     protowire.Number = 2
)

// AppendProto appends the protobuf wire encoding of l. Every field is written
// because several defaults are non-zero.
func AppendProto(dst []byte, l lighting.Lighting) []byte {
	dst = protowire.AppendTag(dst, fieldExposure, protowire.BytesType)
	dst = protowire.AppendBytes(dst, appendExposure(nil, l.Exposure))

	dst = protowire.AppendTag(dst, fieldAmbientLight, protowire.BytesType)
	dst = protowire.AppendBytes(dst, appendAmbient(nil, l.AmbientLight))

	dst = appendFloatField(dst, fieldShadow, l.ShadowIntensity)
	dst = appendFloatField(dst, fieldSaturation, l.Saturation)
	dst = appendFloatField(dst, fieldVolumetric, l.VolumetricLightStrength)
	return dst
}

func MarshalProto(l lighting.Lighting) []byte {
	return AppendProto(nil, l)
}

// UnmarshalProto decodes a Lighting message. Absent fields keep their
// defaults and unknown fields are skipped.
func UnmarshalProto(b []byte) (lighting.Lighting, error) {
	l := lighting.Default()
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldExposure:
			v, n, err := consumeMessage(num, typ, b)
			if err != nil {
				return 0, err
			}
			return n, decodeExposure(v, &l.Exposure)
		case fieldAmbientLight:
			v, n, err := consumeMessage(num, typ, b)
			if err != nil {
				return 0, err
			}
			return n, decodeAmbient(v, &l.AmbientLight)
		case fieldShadow:
			return consumeFloat(num, typ, b, &l.ShadowIntensity)
		case fieldSaturation:
			return consumeFloat(num, typ, b, &l.Saturation)
		case fieldVolumetric:
			return consumeFloat(num, typ, b, &l.VolumetricLightStrength)
		}
		return skip(num, typ, b)
	})
	return l, err
}

func appendExposure(dst []byte, e lighting.AutoExposure) []byte {
	dst = appendFloatField(dst, fieldLuminanceMin, e.LuminanceMin)
	dst = appendFloatField(dst, fieldLuminanceMax, e.LuminanceMax)
	dst = appendFloatField(dst, fieldExposureCorrection, e.ExposureCorrection)
	dst = appendFloatField(dst, fieldSpeedDarkBright, e.SpeedDarkBright)
	dst = appendFloatField(dst, fieldSpeedBrightDark, e.SpeedBrightDark)
	dst = appendFloatField(dst, fieldCenterWeightPower, e.CenterWeightPower)
	return dst
}

func appendAmbient(dst []byte, a lighting.AmbientLight) []byte {
	dst = protowire.AppendTag(dst, fieldAmbientLuminance, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(a.Luminance))
	dst = protowire.AppendTag(dst, fieldAmbientColor, protowire.Fixed32Type)
	return protowire.AppendFixed32(dst, a.Color.ARGB())
}

func decodeExposure(b []byte, e *lighting.AutoExposure) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldLuminanceMin:
			return consumeFloat(num, typ, b, &e.LuminanceMin)
		case fieldLuminanceMax:
			return consumeFloat(num, typ, b, &e.LuminanceMax)
		case fieldExposureCorrection:
			return consumeFloat(num, typ, b, &e.ExposureCorrection)
		case fieldSpeedDarkBright:
			return consumeFloat(num, typ, b, &e.SpeedDarkBright)
		case fieldSpeedBrightDark:
			return consumeFloat(num, typ, b, &e.SpeedBrightDark)
		case fieldCenterWeightPower:
			return consumeFloat(num, typ, b, &e.CenterWeightPower)
		}
		return skip(num, typ, b)
	})
}

func decodeAmbient(b []byte, a *lighting.AmbientLight) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldAmbientLuminance:
			if typ != protowire.VarintType {
				return 0, wrongType(num, typ)
			}
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			if v > math.MaxUint8 {
				return 0, fmt.Errorf("ambient_light.luminance %d overflows uint8", v)
			}
			a.Luminance = uint8(v)
			return n, nil
		case fieldAmbientColor:
			if typ != protowire.Fixed32Type {
				return 0, wrongType(num, typ)
			}
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			a.Color = lighting.ColorFromARGB(v)
			return n, nil
		}
		return skip(num, typ, b)
	})
}

// walk iterates the fields of one message. fn consumes the value that
// follows the tag and reports how many bytes it used.
func walk(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func appendFloatField(dst []byte, num protowire.Number, v float32) []byte {
	dst = protowire.AppendTag(dst, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(dst, math.Float32bits(v))
}

func consumeFloat(num protowire.Number, typ protowire.Type, b []byte, out *float32) (int, error) {
	if typ != protowire.Fixed32Type {
		return 0, wrongType(num, typ)
	}
	v, n := protowire.ConsumeFixed32(b)
	if n < 0 {
		return 0, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
	}
	*out = math.Float32frombits(v)
	return n, nil
}

func consumeMessage(num protowire.Number, typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, wrongType(num, typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
	}
	return v, n, nil
}

func skip(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n))
	}
	return n, nil
}

func wrongType(num protowire.Number, typ protowire.Type) error {
	return fmt.Errorf("field %d: unexpected wire type %d", num, typ)
}
