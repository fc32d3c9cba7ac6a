package background

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Well-known colors.
const (
	White = "#ffffff"
	Black = "#000000"
)

// brightnessThreshold separates light from dark colors.
const brightnessThreshold = 128

// Color is either a single hex color or an ordered list of gradient stops.
// It marshals back to the JSON shape it was built from.
type Color struct {
	stops    []string
	gradient bool
}

// Scalar returns a single-color value.
func Scalar(hex string) Color {
	return Color{stops: []string{hex}}
}

// Gradient returns a list of gradient stops.
func Gradient(stops ...string) Color {
	return Color{stops: append([]string(nil), stops...), gradient: true}
}

// IsGradient reports whether c was given as a list of stops.
func (c Color) IsGradient() bool {
	return c.gradient
}

// Stops returns a copy of the color stops.
func (c Color) Stops() []string {
	return append([]string(nil), c.stops...)
}

// Primary returns the scalar color or the first gradient stop.
func (c Color) Primary() string {
	if len(c.stops) == 0 {
		return ""
	}
	return c.stops[0]
}

// Equal reports whether two colors have the same shape and stops.
func (c Color) Equal(o Color) bool {
	if c.gradient != o.gradient || len(c.stops) != len(o.stops) {
		return false
	}
	for i := range c.stops {
		if c.stops[i] != o.stops[i] {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (c Color) MarshalJSON() ([]byte, error) {
	if c.gradient {
		return json.Marshal(c.stops)
	}
	return json.Marshal(c.Primary())
}

var errBadColor = errors.New("color must be a hex string or a list of hex strings")

// UnmarshalJSON implements json.Unmarshaler. Every entry must be a hex color.
func (c *Color) UnmarshalJSON(data []byte) error {
	var scalar string
	if err := json.Unmarshal(data, &scalar); err == nil {
		if !IsHex(scalar) {
			return errBadColor
		}
		*c = Scalar(scalar)
		return nil
	}

	var stops []string
	if err := json.Unmarshal(data, &stops); err != nil || len(stops) == 0 {
		return errBadColor
	}
	for _, s := range stops {
		if !IsHex(s) {
			return errBadColor
		}
	}
	*c = Gradient(stops...)
	return nil
}

// PrimaryColor returns the color itself, or the first stop of a gradient.
func PrimaryColor(c Color) string {
	return c.Primary()
}

// IsHex reports whether s is a #rgb or #rrggbb color.
func IsHex(s string) bool {
	_, _, _, ok := parseHex(s)
	return ok
}

func parseHex(s string) (r, g, b uint8, ok bool) {
	if !strings.HasPrefix(s, "#") {
		return 0, 0, 0, false
	}
	h := s[1:]

	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return 0, 0, 0, false
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

// Brightness returns the perceived brightness of a hex color on a 0-255
// scale. ok is false when hex cannot be parsed.
func Brightness(hex string) (float64, bool) {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return 0, false
	}
	return (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000, true
}

// darken scales every channel to 30% of its value.
func darken(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return Black
	}
	scale := func(v uint8) uint8 { return uint8(float64(v) * 0.3) }
	return fmt.Sprintf("#%02x%02x%02x", scale(r), scale(g), scale(b))
}

// ContrastTextColor returns a text color readable on top of cfg.
//
// Solid backgrounds keep the requested color unless both the background and
// the requested color are light, in which case a darkened requested color is
// used. Animated backgrounds always get white text.
func ContrastTextColor(cfg Config, requested string) string {
	solid, ok := cfg.(Solid)
	if !ok {
		return White
	}

	bg, ok := Brightness(solid.Color.Primary())
	if !ok || bg <= brightnessThreshold {
		return requested
	}

	fg, ok := Brightness(requested)
	if !ok {
		return Black
	}
	if fg <= brightnessThreshold {
		return requested
	}
	return darken(requested)
}
