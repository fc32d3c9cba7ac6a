package background

// Defaults shared by every type.
const (
	DefaultSpeed     = 1.0
	DefaultIntensity = 1.0
)

// Hyperspeed presets and distortion functions understood by the renderer.
var (
	HyperspeedPresets = []string{"one", "two", "three", "four", "five", "six"}
	Distortions       = []string{
		"turbulentDistortion",
		"mountainDistortion",
		"xyDistortion",
		"LongRaceDistortion",
		"deepDistortion",
	}
	Directions = []Direction{DirectionRight, DirectionLeft, DirectionUp, DirectionDown, DirectionDiagonal}
)

func ptr[T any](v T) *T { return &v }

// defaultColor returns the color a type starts with.
func defaultColor(t Type) Color {
	switch t {
	case TypeHyperspeed:
		return Scalar("#000000")
	case TypeSilk:
		return Scalar("#7B7481")
	case TypeSquares:
		return Scalar("#060010")
	default:
		return Scalar(White)
	}
}

func defaultCommon(t Type) Common {
	return Common{
		Color:     defaultColor(t),
		Speed:     DefaultSpeed,
		Intensity: DefaultIntensity,
	}
}

// Default returns the configuration used whenever a stored value is missing
// or malformed: a plain white background.
func Default() Config {
	return Solid{Common: defaultCommon(TypeSolid)}
}

// ApplyTypeDefaults returns the full default configuration for t. Fields
// specific to other types are not carried over. Unknown types yield Default.
func ApplyTypeDefaults(t Type) Config {
	c := defaultCommon(t)

	switch t {
	case TypeHyperspeed:
		return Hyperspeed{
			Common:               c,
			Preset:               ptr("one"),
			Distortion:           ptr("turbulentDistortion"),
			RoadWidth:            ptr(10.0),
			IslandWidth:          ptr(2.0),
			LanesPerRoad:         ptr(4),
			Fov:                  ptr(90.0),
			FovSpeedUp:           ptr(150.0),
			SpeedUp:              ptr(2.0),
			CarLightsFade:        ptr(0.4),
			TotalSideLightSticks: ptr(20),
			LightPairsPerRoadWay: ptr(40),
		}
	case TypeSilk:
		return Silk{
			Common:         c,
			Scale:          ptr(1.0),
			NoiseIntensity: ptr(1.5),
			Rotation:       ptr(0.0),
		}
	case TypeSquares:
		return Squares{
			Common:         c,
			Direction:      ptr(DirectionRight),
			BorderColor:    ptr("#999999"),
			SquareSize:     ptr(40.0),
			HoverFillColor: ptr("#222222"),
		}
	case TypeIridescence:
		return Iridescence{
			Common:           c,
			IridescenceColor: &[3]float64{1, 1, 1},
			Amplitude:        ptr(0.1),
			MouseReact:       ptr(true),
			Brightness:       ptr(1.0),
			Saturation:       ptr(1.0),
			Reflection:       ptr(0.5),
		}
	default:
		return Default()
	}
}
