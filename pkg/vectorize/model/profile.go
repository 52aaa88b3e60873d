package model

// Mode is the curve fitting mode requested from the tracing engine.
type Mode string

const (
	ModePixel   Mode = "pixel"
	ModePolygon Mode = "polygon"
	ModeSpline  Mode = "spline"
)

// ConverterProfile describes the tuning of one trace attempt.
type ConverterProfile struct {
	Name            string  `json:"name" yaml:"name" toml:"name"`
	Mode            Mode    `json:"mode" yaml:"mode" toml:"mode"`
	CornerThreshold int     `json:"corner_threshold" yaml:"corner_threshold" toml:"corner_threshold"`
	LengthThreshold float64 `json:"length_threshold" yaml:"length_threshold" toml:"length_threshold"`
	MaxIterations   int     `json:"max_iterations" yaml:"max_iterations" toml:"max_iterations"`
	SpliceThreshold int     `json:"splice_threshold" yaml:"splice_threshold" toml:"splice_threshold"`
	FilterSpeckle   int     `json:"filter_speckle" yaml:"filter_speckle" toml:"filter_speckle"`
	PathPrecision   int     `json:"path_precision" yaml:"path_precision" toml:"path_precision"`
}

// RenderOptions are shared by every attempt of a run.
type RenderOptions struct {
	// Invert fills the traced shapes instead of the background.
	Invert bool
	// PathColor is the solid fill used for every traced path.
	PathColor string
	// TransparentBackground omits any background shape.
	TransparentBackground bool
	// Scale multiplies output coordinates.
	Scale float64
}

// DefaultRenderOptions returns the options used when none are configured.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Invert:                true,
		PathColor:             "#000000",
		TransparentBackground: true,
		Scale:                 1,
	}
}

// DefaultProfiles returns the fixed attempt order, coarsest and fastest first.
func DefaultProfiles() []ConverterProfile {
	return []ConverterProfile{
		{
			Name:            "fast",
			Mode:            ModePolygon,
			CornerThreshold: 60,
			LengthThreshold: 10,
			MaxIterations:   5,
			SpliceThreshold: 45,
			FilterSpeckle:   8,
			PathPrecision:   1,
		},
		{
			Name:            "balanced",
			Mode:            ModeSpline,
			CornerThreshold: 60,
			LengthThreshold: 4,
			MaxIterations:   10,
			SpliceThreshold: 45,
			FilterSpeckle:   4,
			PathPrecision:   2,
		},
		{
			Name:            "detailed",
			Mode:            ModeSpline,
			CornerThreshold: 45,
			LengthThreshold: 3.5,
			MaxIterations:   15,
			SpliceThreshold: 30,
			FilterSpeckle:   2,
			PathPrecision:   3,
		},
	}
}
