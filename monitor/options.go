package monitor

import "go.uber.org/zap"

// Option configures a Monitor at construction time, following the
// functional-options pattern: each option applies itself to the
// unexported config through its apply method rather than exposing the
// config's fields directly.
type Option interface {
	apply(*config)
}

type config struct {
	stopOnVerdict    bool
	lenientCausality bool
	formulaSizeLimit int
	logger           *zap.Logger
	verbose          bool
	debug            bool
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithStopOnVerdict makes Run return as soon as the formula reaches a
// terminal verdict (TRUE or FALSE) instead of absorbing the rest of the
// trace.
func WithStopOnVerdict() Option {
	return optionFunc(func(c *config) { c.stopOnVerdict = true })
}

// WithVerbose raises per-disjunct evaluation detail to debug: every call
// to Absorb logs, for every disjunct that had not reached a terminal
// verdict before that call, its current verdict and witness.
func WithVerbose() Option {
	return optionFunc(func(c *config) { c.verbose = true })
}

// WithDebug additionally logs every frontier store Absorb derivation
// decision (accept/retain/retire) at debug level.
func WithDebug() Option {
	return optionFunc(func(c *config) { c.debug = true })
}

// WithLenientCausality tolerates an event whose vector clock claims newer
// knowledge of a non-participant process than a frontier has, by retaining
// that frontier unextended instead of failing the whole Absorb with a
// CausalityViolation. See frontier.WithLenientCausality.
func WithLenientCausality() Option {
	return optionFunc(func(c *config) { c.lenientCausality = true })
}

// WithFormulaSizeLimit overrides dlnf's default AST node-count guard.
func WithFormulaSizeLimit(n int) Option {
	return optionFunc(func(c *config) { c.formulaSizeLimit = n })
}

// WithLogger attaches a structured logger; Run emits one debug record per
// absorbed event when it is non-nil.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *config) { c.logger = l })
}

func newConfig(opts []Option) config {
	c := config{formulaSizeLimit: 0, logger: zap.NewNop()}
	for _, o := range opts {
		o.apply(&c)
	}
	return c
}
