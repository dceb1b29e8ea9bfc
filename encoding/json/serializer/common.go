package serializer

import (
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

// preamble handles explicit default and null, done is true when the caller should return code
func preamble(node *value.Node, ctx *unmarshal.Context) (result.Code, bool) {
	if node.IsExplicitDefault() {
		return ctx.Report(result.New(result.ReadField, result.DefaultsUsed), "Value initialized with default."), true
	}
	if node.IsNull() {
		if ctx.Settings.NullPolicy == unmarshal.StrictNulls {
			return ctx.Report(result.New(result.ReadField, result.Unsupported), "Null is not allowed."), true
		}
		return ctx.Report(result.New(result.ReadField, result.DefaultsUsed), "Null value ignored, default used."), true
	}
	return result.Code{}, false
}

func coerce(ctx *unmarshal.Context) bool {
	return ctx.Settings.NumberPolicy == unmarshal.CoerceNumbers
}

func mismatch(ctx *unmarshal.Context, node *value.Node, expected string) result.Code {
	return ctx.Reportf(result.New(result.ReadField, result.Unsupported), "Unsupported %v value, expected %v.", node.Kind(), expected)
}

func success(ctx *unmarshal.Context) result.Code {
	return ctx.Report(result.New(result.ReadField, result.Success), "Success")
}
