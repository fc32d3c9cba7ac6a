package background

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Parse errors.
var (
	ErrEmpty       = errors.New("background config is empty")
	ErrMalformed   = errors.New("background config is not a JSON object")
	ErrUnknownType = errors.New("unknown background type")
)

// ValidationError reports a field with an unusable value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Parse decodes a stored background config. It never fails: empty, null or
// malformed input and unknown types yield Default. A missing type means
// solid. Known keys with unusable values fall back to their defaults, or
// stay unset for type-specific fields. Unknown keys are ignored.
func Parse(raw string) Config {
	cfg, err := decode(raw)
	if err != nil {
		return Default()
	}
	return cfg
}

// ParseStrict decodes raw like Parse but reports malformed input and
// validates the result. It is used when an owner saves a config.
func ParseStrict(raw string) (Config, error) {
	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Serialize encodes cfg as JSON. A nil or unencodable config serializes as
// Default.
func Serialize(cfg Config) string {
	if cfg == nil {
		cfg = Default()
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		b, _ = json.Marshal(Default())
	}
	return string(b)
}

type fields map[string]json.RawMessage

func decode(raw string) (Config, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, ErrEmpty
	}

	var f fields
	if err := json.Unmarshal([]byte(raw), &f); err != nil || f == nil {
		return nil, ErrMalformed
	}

	t := TypeSolid
	if rawType, ok := f["type"]; ok && !isNull(rawType) {
		var s string
		if err := json.Unmarshal(rawType, &s); err != nil {
			return nil, ErrUnknownType
		}
		if s != "" {
			t = Type(s)
		}
	}
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	c := decodeCommon(f, t)

	switch t {
	case TypeHyperspeed:
		return Hyperspeed{
			Common:               c,
			Preset:               oneOf(f, "preset", HyperspeedPresets),
			Distortion:           oneOf(f, "distortion", Distortions),
			RoadWidth:            optional[float64](f, "roadWidth"),
			IslandWidth:          optional[float64](f, "islandWidth"),
			LanesPerRoad:         optional[int](f, "lanesPerRoad"),
			Fov:                  optional[float64](f, "fov"),
			FovSpeedUp:           optional[float64](f, "fovSpeedUp"),
			SpeedUp:              optional[float64](f, "speedUp"),
			CarLightsFade:        optional[float64](f, "carLightsFade"),
			TotalSideLightSticks: optional[int](f, "totalSideLightSticks"),
			LightPairsPerRoadWay: optional[int](f, "lightPairsPerRoadWay"),
		}, nil
	case TypeSilk:
		return Silk{
			Common:         c,
			Scale:          optional[float64](f, "scale"),
			NoiseIntensity: optional[float64](f, "noiseIntensity"),
			Rotation:       optional[float64](f, "rotation"),
		}, nil
	case TypeSquares:
		return Squares{
			Common:         c,
			Direction:      oneOf(f, "direction", Directions),
			BorderColor:    hexField(f, "borderColor"),
			SquareSize:     optional[float64](f, "squareSize"),
			HoverFillColor: hexField(f, "hoverFillColor"),
		}, nil
	case TypeIridescence:
		return Iridescence{
			Common:           c,
			IridescenceColor: channels(f, "iridescenceColor"),
			Amplitude:        optional[float64](f, "amplitude"),
			MouseReact:       optional[bool](f, "mouseReact"),
			Brightness:       optional[float64](f, "brightness"),
			Saturation:       optional[float64](f, "saturation"),
			Reflection:       optional[float64](f, "reflection"),
		}, nil
	default:
		return Solid{
			Common:            c,
			GradientDirection: optional[float64](f, "gradientDirection"),
			GradientType:      oneOf(f, "gradientType", []GradientType{GradientLinear, GradientRadial}),
		}, nil
	}
}

func decodeCommon(f fields, t Type) Common {
	c := defaultCommon(t)

	if raw, ok := f["color"]; ok && !isNull(raw) {
		var col Color
		if err := json.Unmarshal(raw, &col); err == nil {
			// Only solid backgrounds render gradients.
			if col.IsGradient() && t != TypeSolid {
				col = Scalar(col.Primary())
			}
			c.Color = col
		}
	}
	if v, ok := field[float64](f, "speed"); ok {
		c.Speed = v
	}
	if v, ok := field[float64](f, "intensity"); ok {
		c.Intensity = v
	}
	if v, ok := field[bool](f, "mouseInteraction"); ok {
		c.MouseInteraction = v
	}

	return c
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func field[T any](f fields, key string) (T, bool) {
	var v T
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

func optional[T any](f fields, key string) *T {
	if v, ok := field[T](f, key); ok {
		return &v
	}
	return nil
}

func oneOf[T ~string](f fields, key string, allowed []T) *T {
	v, ok := field[T](f, key)
	if !ok || !slices.Contains(allowed, v) {
		return nil
	}
	return &v
}

func hexField(f fields, key string) *string {
	v, ok := field[string](f, key)
	if !ok || !IsHex(v) {
		return nil
	}
	return &v
}

func channels(f fields, key string) *[3]float64 {
	v, ok := field[[]float64](f, key)
	if !ok || len(v) != 3 {
		return nil
	}
	return &[3]float64{v[0], v[1], v[2]}
}

// Validate checks the values a renderer relies on.
func Validate(cfg Config) error {
	if cfg == nil {
		return &ValidationError{Field: "type", Message: "is required"}
	}

	c := cfg.Base()
	stops := c.Color.Stops()
	if len(stops) == 0 {
		return &ValidationError{Field: "color", Message: "is required"}
	}
	for _, s := range stops {
		if !IsHex(s) {
			return &ValidationError{Field: "color", Message: fmt.Sprintf("%q is not a hex color", s)}
		}
	}
	if c.Color.IsGradient() && cfg.Type() != TypeSolid {
		return &ValidationError{Field: "color", Message: "gradients are only supported for solid backgrounds"}
	}
	if !finite(c.Speed) || c.Speed <= 0 {
		return &ValidationError{Field: "speed", Message: "must be a positive number"}
	}
	if !finite(c.Intensity) || c.Intensity < 0 {
		return &ValidationError{Field: "intensity", Message: "must not be negative"}
	}

	switch v := cfg.(type) {
	case Solid:
		if v.GradientDirection != nil && !finite(*v.GradientDirection) {
			return &ValidationError{Field: "gradientDirection", Message: "must be a number"}
		}
		if v.GradientType != nil && *v.GradientType != GradientLinear && *v.GradientType != GradientRadial {
			return &ValidationError{Field: "gradientType", Message: "must be linear or radial"}
		}
	case Hyperspeed:
		if v.Preset != nil && !slices.Contains(HyperspeedPresets, *v.Preset) {
			return &ValidationError{Field: "preset", Message: "unknown preset"}
		}
		if v.Distortion != nil && !slices.Contains(Distortions, *v.Distortion) {
			return &ValidationError{Field: "distortion", Message: "unknown distortion"}
		}
		for _, f := range []floatField{
			{"roadWidth", v.RoadWidth},
			{"islandWidth", v.IslandWidth},
			{"fov", v.Fov},
			{"fovSpeedUp", v.FovSpeedUp},
			{"speedUp", v.SpeedUp},
			{"carLightsFade", v.CarLightsFade},
		} {
			if f.value != nil && (!finite(*f.value) || *f.value < 0) {
				return &ValidationError{Field: f.name, Message: "must not be negative"}
			}
		}
		for _, f := range []intField{
			{"lanesPerRoad", v.LanesPerRoad},
			{"totalSideLightSticks", v.TotalSideLightSticks},
			{"lightPairsPerRoadWay", v.LightPairsPerRoadWay},
		} {
			if f.value != nil && *f.value < 0 {
				return &ValidationError{Field: f.name, Message: "must not be negative"}
			}
		}
	case Silk:
		for _, f := range []floatField{
			{"scale", v.Scale},
			{"noiseIntensity", v.NoiseIntensity},
			{"rotation", v.Rotation},
		} {
			if f.value != nil && !finite(*f.value) {
				return &ValidationError{Field: f.name, Message: "must be a number"}
			}
		}
	case Squares:
		if v.Direction != nil && !slices.Contains(Directions, *v.Direction) {
			return &ValidationError{Field: "direction", Message: "unknown direction"}
		}
		if v.BorderColor != nil && !IsHex(*v.BorderColor) {
			return &ValidationError{Field: "borderColor", Message: "must be a hex color"}
		}
		if v.HoverFillColor != nil && !IsHex(*v.HoverFillColor) {
			return &ValidationError{Field: "hoverFillColor", Message: "must be a hex color"}
		}
		if v.SquareSize != nil && (!finite(*v.SquareSize) || *v.SquareSize <= 0) {
			return &ValidationError{Field: "squareSize", Message: "must be a positive number"}
		}
	case Iridescence:
		if v.IridescenceColor != nil {
			for _, ch := range v.IridescenceColor {
				if !finite(ch) || ch < 0 || ch > 1 {
					return &ValidationError{Field: "iridescenceColor", Message: "channels must be between 0 and 1"}
				}
			}
		}
		for _, f := range []floatField{
			{"amplitude", v.Amplitude},
			{"brightness", v.Brightness},
			{"saturation", v.Saturation},
			{"reflection", v.Reflection},
		} {
			if f.value != nil && (!finite(*f.value) || *f.value < 0) {
				return &ValidationError{Field: f.name, Message: "must not be negative"}
			}
		}
	}

	return nil
}

// floatField and intField pair an optional value with its JSON name so
// checks run, and report, in declaration order.
type floatField struct {
	name  string
	value *float64
}

type intField struct {
	name  string
	value *int
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
