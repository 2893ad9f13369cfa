package txcoord

import (
	"maps"
	"time"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = 100 * time.Millisecond
	DefaultMaxBackoff  = 2 * time.Second
)

// Options tune a single RunUnit call. Zero fields fall back to the defaults.
type Options struct {
	Priority Priority
	Timeout  time.Duration
	// MaxRetries is the total number of attempts, the first one included.
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Metadata    map[string]string
}

func DefaultOptions() Options {
	return Options{
		Priority:    PriorityNormal,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		BaseBackoff: DefaultBaseBackoff,
		MaxBackoff:  DefaultMaxBackoff,
	}
}

// WithMetadata returns a copy of o with key set in its metadata.
func (o Options) WithMetadata(key, value string) Options {
	md := maps.Clone(o.Metadata)
	if md == nil {
		md = make(map[string]string, 1)
	}
	md[key] = value
	o.Metadata = md
	return o
}

func (o Options) withDefaults(fallback Options) Options {
	if o.Priority == 0 {
		o.Priority = fallback.Priority
	}
	if o.Timeout <= 0 {
		o.Timeout = fallback.Timeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = fallback.MaxRetries
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = fallback.BaseBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = fallback.MaxBackoff
	}
	if o.MaxBackoff < o.BaseBackoff {
		o.MaxBackoff = o.BaseBackoff
	}
	return o
}
