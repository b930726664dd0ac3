package flow

// Option configures a FlowParser at construction.
type Option func(*config)

type config struct {
	maxSegments int
}

// WithMaxSegments bounds how many symbols a single flow decomposition
// may contain, guarding against pathological zero-width symbol loops.
// 0 (the default) means unbounded.
func WithMaxSegments(n int) Option {
	return func(c *config) { c.maxSegments = n }
}
