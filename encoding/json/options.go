package json

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/unmarshal"
)

type optionFn func(*Options)

func (o optionFn) apply(opts *Options) { o(opts) }

func WithMode(mode Mode) Option {
	return optionFn(func(o *Options) { o.Mode = mode })
}

func WithUnknownFieldPolicy(policy UnknownFieldPolicy) Option {
	return optionFn(func(o *Options) {
		o.UnknownFieldPolicy = policy
		o.setUnknownFieldPolicy = true
	})
}

func WithNumberPolicy(policy NumberPolicy) Option {
	return optionFn(func(o *Options) {
		o.NumberPolicy = policy
		o.setNumberPolicy = true
	})
}

func WithNullPolicy(policy NullPolicy) Option {
	return optionFn(func(o *Options) {
		o.NullPolicy = policy
		o.setNullPolicy = true
	})
}

func WithTimeLayout(layout string) Option {
	return optionFn(func(o *Options) { o.TimeLayout = layout })
}

// WithMaxDepth halts loading nested deeper than depth, 0 disables the check
func WithMaxDepth(depth int) Option {
	return optionFn(func(o *Options) { o.MaxDepth = depth })
}

// WithRegistry sets type registry, target types are registered with it on demand
func WithRegistry(registry *structload.Registry) Option {
	return optionFn(func(o *Options) { o.Registry = registry })
}

// WithSerializers sets custom serializers, built-in serializers are used otherwise
func WithSerializers(serializers *unmarshal.Serializers) Option {
	return optionFn(func(o *Options) { o.Serializers = serializers })
}

func WithReporter(reporter unmarshal.Reporter) Option {
	return optionFn(func(o *Options) { o.Reporter = reporter })
}

// WithLogger logs every reported outcome
func WithLogger(logger zerolog.Logger) Option {
	return optionFn(func(o *Options) { o.Logger = &logger })
}

func defaultOptions() Options {
	return Options{
		Mode:               ModeCompat,
		UnknownFieldPolicy: IgnoreUnknown,
		NumberPolicy:       CoerceNumbers,
		NullPolicy:         CompatNulls,
		TimeLayout:         time.RFC3339,
	}
}

func resolveOptions(opts []Option) Options {
	result := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&result)
	}
	if result.TimeLayout == "" {
		result.TimeLayout = time.RFC3339
	}
	if result.Mode == ModeStrict {
		if !result.setUnknownFieldPolicy {
			result.UnknownFieldPolicy = ErrorOnUnknown
		}
		if !result.setNumberPolicy {
			result.NumberPolicy = ExactNumbers
		}
		if !result.setNullPolicy {
			result.NullPolicy = StrictNulls
		}
	}
	return result
}

func (o *Options) settings() unmarshal.Settings {
	ret := unmarshal.Settings{TimeLayout: o.TimeLayout, MaxDepth: o.MaxDepth}
	if o.UnknownFieldPolicy == ErrorOnUnknown {
		ret.UnknownFieldPolicy = unmarshal.ErrorOnUnknown
	}
	if o.NumberPolicy == ExactNumbers {
		ret.NumberPolicy = unmarshal.ExactNumbers
	}
	if o.NullPolicy == StrictNulls {
		ret.NullPolicy = unmarshal.StrictNulls
	}
	return ret
}
