package fuzz

// Context is the explicit, per-run mutation counter state: a global
// count of values produced so far plus each mutator's own local
// count, threaded through a single specialization run. spec.md's
// design notes call out the source's class-level (process-wide)
// counter as a mistake to correct; this type is that correction.
type Context struct {
	globalUsed uint64
	globalMax  uint64
	local      map[*MutatorInstance]int64
}

// NewContext returns a Context bound to fz's global counter ceiling.
// estimate is the target domain's CountEstimate, used to resolve a
// ratio-valued counterMax (spec.md §9 open question (b)); pass 0 if
// fz.counterMax is already an absolute value of 1 or more.
func NewContext(fz *Fuzz, estimate uint64) *Context {
	max := fz.counterMax
	var globalMax uint64
	switch {
	case max > 0 && max < 1 && estimate > 0:
		globalMax = uint64(max * float64(estimate))
	case max >= 1:
		globalMax = uint64(max)
	default:
		globalMax = uint64(1) << 32
	}
	return &Context{globalMax: globalMax, local: map[*MutatorInstance]int64{}}
}

// Used reports how many values this Context has produced so far.
func (c *Context) Used() uint64 { return c.globalUsed }

// GlobalMax reports the resolved absolute ceiling this Context enforces.
func (c *Context) GlobalMax() uint64 { return c.globalMax }

// ConsumeMessage checks and increments the global counter once per
// specialized message, not once per internal decision point. spec.md
// §8's "with counter_max = N, specialize yields exactly N values" is a
// message-level guarantee: a single message can involve any number of
// Data/Alt/Repeat/Opt picks internally, and none of those should chip
// away at the same budget a message does. The specializer's run loop
// calls this exactly once per iteration, before building that
// iteration's message.
func (c *Context) ConsumeMessage() error {
	if c.globalUsed >= c.globalMax {
		return ErrMaxFuzzing
	}
	c.globalUsed++
	return nil
}

// consumeLocal decrements mi's own local counter, if it has one (a
// positive localCounterMax), returning ErrMaxFuzzing once it reaches
// zero. The global counter is gated separately, once per message, by
// ConsumeMessage.
func (c *Context) consumeLocal(mi *MutatorInstance) error {
	if mi.localCounterMax > 0 {
		used := c.local[mi]
		if used >= mi.localCounterMax {
			return ErrMaxFuzzing
		}
		c.local[mi] = used + 1
	}
	return nil
}
