package parser

import "time"

// DebugLevel controls debug tracing (development only), mirroring the
// teacher's DebugOff/DebugPaths/DebugDetailed levels.
type DebugLevel int

const (
	DebugOff DebugLevel = iota
	DebugPaths
	DebugDetailed
)

// TelemetryMode controls production-safe metrics collection.
type TelemetryMode int

const (
	TelemetryOff TelemetryMode = iota
	TelemetryBasic
	TelemetryTiming
)

// Option configures a MessageParser at construction.
type Option func(*config)

type config struct {
	debug     DebugLevel
	telemetry TelemetryMode
}

// WithDebug records level in the parser's configuration. The walk
// does not read it and collects no DebugEvent values.
func WithDebug(level DebugLevel) Option {
	return func(c *config) { c.debug = level }
}

// WithTelemetry records mode in the parser's configuration. The walk
// does not read it and fills in no Stats.
func WithTelemetry(mode TelemetryMode) Option {
	return func(c *config) { c.telemetry = mode }
}

// ParseOption configures a single ParseBits call.
type ParseOption func(*parseConfig)

type parseConfig struct {
	mustConsumeEverything bool
	carnivorous           bool
}

// WithMustConsumeEverything overrides the default (true): when false,
// a path is accepted even if input remains unconsumed, as FlowParser
// requires.
func WithMustConsumeEverything(v bool) ParseOption {
	return func(c *parseConfig) { c.mustConsumeEverything = v }
}

// WithCarnivorous lets the last leaf in a top-level parse consume all
// remaining input even past its type's max length.
func WithCarnivorous(v bool) ParseOption {
	return func(c *parseConfig) { c.carnivorous = v }
}

// DebugEvent describes one step of the walk. The parser declares the
// type but records no events, whatever WithDebug is set to.
type DebugEvent struct {
	Timestamp time.Time
	Op        string
	Path      string
	Detail    string
}

// Stats holds production metrics. The parser declares the type but
// fills in none, whatever WithTelemetry is set to.
type Stats struct {
	PathsExplored     int
	BytesConsumed     int
	RelationsResolved int
	Duration          time.Duration
}
