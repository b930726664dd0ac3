package specializer

import "time"

// DebugLevel controls debug tracing (development only), mirroring parser.DebugLevel.
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

// Option configures a SymbolSpecializer at construction.
type Option func(*config)

type config struct {
	debug     DebugLevel
	telemetry TelemetryMode
}

// WithDebug records level in the specializer's configuration. The
// walk does not read it and collects no DebugEvent values.
func WithDebug(level DebugLevel) Option {
	return func(c *config) { c.debug = level }
}

// WithTelemetry records mode in the specializer's configuration. The
// walk does not read it and fills in no Stats.
func WithTelemetry(mode TelemetryMode) Option {
	return func(c *config) { c.telemetry = mode }
}

// DebugEvent describes one step of a specialization run. The
// specializer declares the type but records no events.
type DebugEvent struct {
	Timestamp time.Time
	Op        string
	Detail    string
}

// Stats holds production metrics for a Specialize run. The specializer
// declares the type but fills in none.
type Stats struct {
	MessagesProduced  int
	BytesProduced     int
	RelationsPatched  int
	MutationsConsumed uint64
	Duration          time.Duration
}
