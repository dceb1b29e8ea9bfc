package json

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
)

// Mode controls compatibility vs strict behavior.
type Mode int

const (
	ModeCompat Mode = iota
	ModeStrict
)

// UnknownFieldPolicy controls unknown key handling.
type UnknownFieldPolicy int

const (
	IgnoreUnknown UnknownFieldPolicy = iota
	ErrorOnUnknown
)

// NumberPolicy controls numeric coercion behavior.
type NumberPolicy int

const (
	CoerceNumbers NumberPolicy = iota
	ExactNumbers
)

// NullPolicy controls null assignment behavior.
type NullPolicy int

const (
	CompatNulls NullPolicy = iota
	StrictNulls
)

// Option mutates runtime options.
type Option interface{ apply(*Options) }

// Options defines runtime behavior.
type Options struct {
	Mode               Mode
	UnknownFieldPolicy UnknownFieldPolicy
	NumberPolicy       NumberPolicy
	NullPolicy         NullPolicy
	TimeLayout         string
	MaxDepth           int

	Registry    *structload.Registry
	Serializers *unmarshal.Serializers
	Reporter    unmarshal.Reporter
	Logger      *zerolog.Logger

	setUnknownFieldPolicy bool
	setNumberPolicy       bool
	setNullPolicy         bool
}

// Diagnostic represents a reported load event
type Diagnostic struct {
	Path    string
	Message string
	Code    result.Code
}

// LoadError is returned when load did not complete, target may be partially updated but never holds leaked or dangling instances
type LoadError struct {
	Code        result.Code
	Diagnostics []Diagnostic
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return d.Code.String() + ": " + d.Message
	}
	return d.Path + ": " + d.Code.String() + ": " + d.Message
}

func (e *LoadError) Error() string {
	builder := strings.Builder{}
	builder.WriteString("failed to load: ")
	builder.WriteString(e.Code.String())
	count := 0
	for _, diagnostic := range e.Diagnostics {
		if diagnostic.Code.Processing == result.Completed {
			continue
		}
		if count == 3 {
			builder.WriteString(", ...")
			break
		}
		builder.WriteString("; ")
		builder.WriteString(diagnostic.String())
		count++
	}
	return builder.String()
}
