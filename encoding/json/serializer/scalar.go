package serializer

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
	"github.com/viant/xunsafe"
)

type (
	// Bool loads bool values
	Bool struct{}
	// String loads string values
	String struct{}
	// Int loads signed integers of a fixed kind
	Int struct{ kind reflect.Kind }
	// Uint loads unsigned integers of a fixed kind
	Uint struct{ kind reflect.Kind }
	// Float loads float32 or float64 values
	Float struct{ kind reflect.Kind }
)

func (s *Bool) Flags() unmarshal.OperationFlags   { return unmarshal.InitializeNewInstance }
func (s *String) Flags() unmarshal.OperationFlags { return unmarshal.InitializeNewInstance }
func (s *Int) Flags() unmarshal.OperationFlags    { return unmarshal.InitializeNewInstance }
func (s *Uint) Flags() unmarshal.OperationFlags   { return unmarshal.InitializeNewInstance }
func (s *Float) Flags() unmarshal.OperationFlags  { return unmarshal.InitializeNewInstance }

func (s *Bool) Load(target unsafe.Pointer, _ structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	if code, done := preamble(node, ctx); done {
		if node.IsExplicitDefault() {
			*xunsafe.AsBoolPtr(target) = false
		}
		return code
	}
	var v bool
	switch node.Kind() {
	case value.KindBool:
		v = node.Bool()
	case value.KindString:
		if !coerce(ctx) {
			return mismatch(ctx, node, "bool")
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(node.Text()))
		if err != nil {
			return ctx.Reportf(result.New(result.Convert, result.Unsupported), "Unable to convert %q to bool.", node.Text())
		}
		v = parsed
	case value.KindNumber:
		if !coerce(ctx) {
			return mismatch(ctx, node, "bool")
		}
		parsed, err := node.Float64()
		if err != nil {
			return ctx.Reportf(result.New(result.Convert, result.Unsupported), "Unable to convert %v to bool.", node.Text())
		}
		v = parsed != 0
	default:
		return mismatch(ctx, node, "bool")
	}
	*xunsafe.AsBoolPtr(target) = v
	return success(ctx)
}

func (s *String) Load(target unsafe.Pointer, _ structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	if code, done := preamble(node, ctx); done {
		if node.IsExplicitDefault() {
			*xunsafe.AsStringPtr(target) = ""
		}
		return code
	}
	var v string
	switch node.Kind() {
	case value.KindString:
		v = node.Text()
	case value.KindNumber:
		if !coerce(ctx) {
			return mismatch(ctx, node, "string")
		}
		v = node.Text()
	case value.KindBool:
		if !coerce(ctx) {
			return mismatch(ctx, node, "string")
		}
		v = strconv.FormatBool(node.Bool())
	default:
		return mismatch(ctx, node, "string")
	}
	*xunsafe.AsStringPtr(target) = v
	return success(ctx)
}

func (s *Int) Load(target unsafe.Pointer, _ structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	if code, done := preamble(node, ctx); done {
		if node.IsExplicitDefault() {
			storeInt(target, s.kind, 0)
		}
		return code
	}
	v, code, ok := readInt(node, ctx)
	if !ok {
		return code
	}
	if !intFits(v, s.kind) {
		return ctx.Reportf(result.New(result.Convert, result.Unsupported), "Value %v is out of range for %v.", v, s.kind)
	}
	storeInt(target, s.kind, v)
	return code
}

func (s *Uint) Load(target unsafe.Pointer, _ structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	if code, done := preamble(node, ctx); done {
		if node.IsExplicitDefault() {
			storeUint(target, s.kind, 0)
		}
		return code
	}
	v, code, ok := readUint(node, ctx)
	if !ok {
		return code
	}
	if !uintFits(v, s.kind) {
		return ctx.Reportf(result.New(result.Convert, result.Unsupported), "Value %v is out of range for %v.", v, s.kind)
	}
	storeUint(target, s.kind, v)
	return code
}

func (s *Float) Load(target unsafe.Pointer, _ structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	if code, done := preamble(node, ctx); done {
		if node.IsExplicitDefault() {
			storeFloat(target, s.kind, 0)
		}
		return code
	}
	var v float64
	var err error
	switch node.Kind() {
	case value.KindNumber:
		v, err = node.Float64()
	case value.KindString:
		if !coerce(ctx) {
			return mismatch(ctx, node, "number")
		}
		v, err = strconv.ParseFloat(strings.TrimSpace(node.Text()), 64)
	default:
		return mismatch(ctx, node, "number")
	}
	if err != nil {
		return ctx.Reportf(result.New(result.Convert, result.Unsupported), "Unable to convert %q to %v.", node.Text(), s.kind)
	}
	if s.kind == reflect.Float32 && math.Abs(v) > math.MaxFloat32 && !math.IsInf(v, 0) {
		return ctx.Reportf(result.New(result.Convert, result.Unsupported), "Value %v is out of range for %v.", v, s.kind)
	}
	storeFloat(target, s.kind, v)
	return success(ctx)
}

func readInt(node *value.Node, ctx *unmarshal.Context) (int64, result.Code, bool) {
	literal := node.Text()
	switch node.Kind() {
	case value.KindNumber:
	case value.KindString:
		if !coerce(ctx) {
			return 0, mismatch(ctx, node, "integer"), false
		}
		literal = strings.TrimSpace(literal)
	case value.KindBool:
		if !coerce(ctx) {
			return 0, mismatch(ctx, node, "integer"), false
		}
		if node.Bool() {
			return 1, success(ctx), true
		}
		return 0, success(ctx), true
	default:
		return 0, mismatch(ctx, node, "integer"), false
	}
	if v, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return v, success(ctx), true
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsNaN(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, ctx.Reportf(result.New(result.Convert, result.Unsupported), "Unable to convert %q to integer.", literal), false
	}
	if f != math.Trunc(f) {
		if !coerce(ctx) {
			return 0, ctx.Reportf(result.New(result.Convert, result.Unsupported), "Fractional value %v is not allowed for integer.", literal), false
		}
		return int64(f), ctx.Reportf(result.New(result.Convert, result.Success), "Fractional value %v truncated.", literal), true
	}
	return int64(f), success(ctx), true
}

func readUint(node *value.Node, ctx *unmarshal.Context) (uint64, result.Code, bool) {
	literal := node.Text()
	switch node.Kind() {
	case value.KindNumber:
	case value.KindString:
		if !coerce(ctx) {
			return 0, mismatch(ctx, node, "unsigned integer"), false
		}
		literal = strings.TrimSpace(literal)
	case value.KindBool:
		if !coerce(ctx) {
			return 0, mismatch(ctx, node, "unsigned integer"), false
		}
		if node.Bool() {
			return 1, success(ctx), true
		}
		return 0, success(ctx), true
	default:
		return 0, mismatch(ctx, node, "unsigned integer"), false
	}
	if v, err := strconv.ParseUint(literal, 10, 64); err == nil {
		return v, success(ctx), true
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxUint64 {
		return 0, ctx.Reportf(result.New(result.Convert, result.Unsupported), "Unable to convert %q to unsigned integer.", literal), false
	}
	if f != math.Trunc(f) {
		if !coerce(ctx) {
			return 0, ctx.Reportf(result.New(result.Convert, result.Unsupported), "Fractional value %v is not allowed for unsigned integer.", literal), false
		}
		return uint64(f), ctx.Reportf(result.New(result.Convert, result.Success), "Fractional value %v truncated.", literal), true
	}
	return uint64(f), success(ctx), true
}

func intFits(v int64, kind reflect.Kind) bool {
	switch kind {
	case reflect.Int8:
		return v >= math.MinInt8 && v <= math.MaxInt8
	case reflect.Int16:
		return v >= math.MinInt16 && v <= math.MaxInt16
	case reflect.Int32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case reflect.Int:
		return strconv.IntSize == 64 || (v >= math.MinInt32 && v <= math.MaxInt32)
	}
	return true
}

func uintFits(v uint64, kind reflect.Kind) bool {
	switch kind {
	case reflect.Uint8:
		return v <= math.MaxUint8
	case reflect.Uint16:
		return v <= math.MaxUint16
	case reflect.Uint32:
		return v <= math.MaxUint32
	case reflect.Uint:
		return strconv.IntSize == 64 || v <= math.MaxUint32
	}
	return true
}

func storeInt(target unsafe.Pointer, kind reflect.Kind, v int64) {
	switch kind {
	case reflect.Int8:
		*xunsafe.AsInt8Ptr(target) = int8(v)
	case reflect.Int16:
		*xunsafe.AsInt16Ptr(target) = int16(v)
	case reflect.Int32:
		*xunsafe.AsInt32Ptr(target) = int32(v)
	case reflect.Int64:
		*xunsafe.AsInt64Ptr(target) = v
	default:
		*xunsafe.AsIntPtr(target) = int(v)
	}
}

func storeUint(target unsafe.Pointer, kind reflect.Kind, v uint64) {
	switch kind {
	case reflect.Uint8:
		*xunsafe.AsUint8Ptr(target) = uint8(v)
	case reflect.Uint16:
		*xunsafe.AsUint16Ptr(target) = uint16(v)
	case reflect.Uint32:
		*xunsafe.AsUint32Ptr(target) = uint32(v)
	case reflect.Uint64:
		*xunsafe.AsUint64Ptr(target) = v
	default:
		*xunsafe.AsUintPtr(target) = uint(v)
	}
}

func storeFloat(target unsafe.Pointer, kind reflect.Kind, v float64) {
	if kind == reflect.Float32 {
		*xunsafe.AsFloat32Ptr(target) = float32(v)
		return
	}
	*xunsafe.AsFloat64Ptr(target) = v
}
