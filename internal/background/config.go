// Package background models the rendering style of a profile page.
//
// A Config is a closed sum type: one struct per background type, each
// embedding the fields shared by all types. Variant fields are pointers and
// stay nil when the stored JSON did not set them.
package background

import "encoding/json"

// Type is the discriminant of a Config.
type Type string

const (
	TypeSolid       Type = "solid"
	TypeHyperspeed  Type = "hyperspeed"
	TypeSilk        Type = "silk"
	TypeSquares     Type = "squares"
	TypeIridescence Type = "iridescence"
)

// Types lists every background type.
var Types = []Type{TypeSolid, TypeHyperspeed, TypeSilk, TypeSquares, TypeIridescence}

// IsValid reports whether t is a known background type.
func (t Type) IsValid() bool {
	switch t {
	case TypeSolid, TypeHyperspeed, TypeSilk, TypeSquares, TypeIridescence:
		return true
	}
	return false
}

// Config is implemented by Solid, Hyperspeed, Silk, Squares and Iridescence.
type Config interface {
	Type() Type
	Base() Common
	isConfig()
}

// Common holds the fields every background type carries.
type Common struct {
	Color            Color   `json:"color"`
	Speed            float64 `json:"speed"`
	Intensity        float64 `json:"intensity"`
	MouseInteraction bool    `json:"mouseInteraction"`
}

// GradientType selects how gradient stops are laid out.
type GradientType string

const (
	GradientLinear GradientType = "linear"
	GradientRadial GradientType = "radial"
)

// Solid is a flat color or a gradient.
type Solid struct {
	Common
	GradientDirection *float64      `json:"gradientDirection,omitempty"` // degrees
	GradientType      *GradientType `json:"gradientType,omitempty"`
}

// Hyperspeed is the highway light-trail animation.
type Hyperspeed struct {
	Common
	Preset               *string  `json:"preset,omitempty"`
	Distortion           *string  `json:"distortion,omitempty"`
	RoadWidth            *float64 `json:"roadWidth,omitempty"`
	IslandWidth          *float64 `json:"islandWidth,omitempty"`
	LanesPerRoad         *int     `json:"lanesPerRoad,omitempty"`
	Fov                  *float64 `json:"fov,omitempty"`
	FovSpeedUp           *float64 `json:"fovSpeedUp,omitempty"`
	SpeedUp              *float64 `json:"speedUp,omitempty"`
	CarLightsFade        *float64 `json:"carLightsFade,omitempty"`
	TotalSideLightSticks *int     `json:"totalSideLightSticks,omitempty"`
	LightPairsPerRoadWay *int     `json:"lightPairsPerRoadWay,omitempty"`
}

// Silk is the flowing fabric shader.
type Silk struct {
	Common
	Scale          *float64 `json:"scale,omitempty"`
	NoiseIntensity *float64 `json:"noiseIntensity,omitempty"`
	Rotation       *float64 `json:"rotation,omitempty"`
}

// Direction is the scroll direction of the squares grid.
type Direction string

const (
	DirectionRight    Direction = "right"
	DirectionLeft     Direction = "left"
	DirectionUp       Direction = "up"
	DirectionDown     Direction = "down"
	DirectionDiagonal Direction = "diagonal"
)

// Squares is the scrolling grid.
type Squares struct {
	Common
	Direction      *Direction `json:"direction,omitempty"`
	BorderColor    *string    `json:"borderColor,omitempty"`
	SquareSize     *float64   `json:"squareSize,omitempty"`
	HoverFillColor *string    `json:"hoverFillColor,omitempty"`
}

// Iridescence is the oil-slick shader. IridescenceColor holds RGB channels
// in the 0..1 range.
type Iridescence struct {
	Common
	IridescenceColor *[3]float64 `json:"iridescenceColor,omitempty"`
	Amplitude        *float64    `json:"amplitude,omitempty"`
	MouseReact       *bool       `json:"mouseReact,omitempty"`
	Brightness       *float64    `json:"brightness,omitempty"`
	Saturation       *float64    `json:"saturation,omitempty"`
	Reflection       *float64    `json:"reflection,omitempty"`
}

func (Solid) Type() Type       { return TypeSolid }
func (Hyperspeed) Type() Type  { return TypeHyperspeed }
func (Silk) Type() Type        { return TypeSilk }
func (Squares) Type() Type     { return TypeSquares }
func (Iridescence) Type() Type { return TypeIridescence }

func (c Solid) Base() Common       { return c.Common }
func (c Hyperspeed) Base() Common  { return c.Common }
func (c Silk) Base() Common        { return c.Common }
func (c Squares) Base() Common     { return c.Common }
func (c Iridescence) Base() Common { return c.Common }

func (Solid) isConfig()       {}
func (Hyperspeed) isConfig()  {}
func (Silk) isConfig()        {}
func (Squares) isConfig()     {}
func (Iridescence) isConfig() {}

// The MarshalJSON methods flatten the variant and put the discriminant first.

func (c Solid) MarshalJSON() ([]byte, error) {
	type plain Solid
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeSolid, plain(c)})
}

func (c Hyperspeed) MarshalJSON() ([]byte, error) {
	type plain Hyperspeed
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeHyperspeed, plain(c)})
}

func (c Silk) MarshalJSON() ([]byte, error) {
	type plain Silk
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeSilk, plain(c)})
}

func (c Squares) MarshalJSON() ([]byte, error) {
	type plain Squares
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeSquares, plain(c)})
}

func (c Iridescence) MarshalJSON() ([]byte, error) {
	type plain Iridescence
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeIridescence, plain(c)})
}
