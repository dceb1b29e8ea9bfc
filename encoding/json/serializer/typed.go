package serializer

import (
	"strings"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/internal/timeutil"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
	"github.com/viant/xunsafe"
)

type (
	// Time loads time.Time from a string formatted with the context time layout
	Time struct{}
	// UUID loads uuid.UUID
	UUID struct{}
	// TypeID loads structload.TypeID
	TypeID struct{}
	// Decimal loads decimal.Decimal from a number or a string literal
	Decimal struct{}
)

func (s *Time) Flags() unmarshal.OperationFlags    { return unmarshal.InitializeNewInstance }
func (s *UUID) Flags() unmarshal.OperationFlags    { return unmarshal.InitializeNewInstance }
func (s *TypeID) Flags() unmarshal.OperationFlags  { return unmarshal.InitializeNewInstance }
func (s *Decimal) Flags() unmarshal.OperationFlags { return unmarshal.InitializeNewInstance }

func (s *Time) Load(target unsafe.Pointer, _ structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	if code, done := preamble(node, ctx); done {
		if node.IsExplicitDefault() {
			*xunsafe.AsTimePtr(target) = time.Time{}
		}
		return code
	}
	if !node.IsString() {
		return mismatch(ctx, node, "time string")
	}
	layout := timeutil.Layout(ctx.Settings.TimeLayout)
	ts, err := timeutil.Parse(layout, strings.TrimSpace(node.Text()))
	if err != nil {
		return ctx.Reportf(result.New(result.Convert, result.Unsupported), "Unable to parse time %q with layout %v: %v.", node.Text(), layout, err)
	}
	*xunsafe.AsTimePtr(target) = ts
	return success(ctx)
}

func (s *UUID) Load(target unsafe.Pointer, _ structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	if code, done := preamble(node, ctx); done {
		if node.IsExplicitDefault() {
			*(*uuid.UUID)(target) = uuid.Nil
		}
		return code
	}
	if !node.IsString() {
		return mismatch(ctx, node, "uuid string")
	}
	id, err := uuid.Parse(strings.TrimSpace(node.Text()))
	if err != nil {
		return ctx.Reportf(result.New(result.Convert, result.Unsupported), "Unable to parse uuid %q: %v.", node.Text(), err)
	}
	*(*uuid.UUID)(target) = id
	return success(ctx)
}

func (s *TypeID) Load(target unsafe.Pointer, _ structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	if code, done := preamble(node, ctx); done {
		if node.IsExplicitDefault() {
			*(*structload.TypeID)(target) = structload.NullTypeID
		}
		return code
	}
	if !node.IsString() {
		return mismatch(ctx, node, "type id string")
	}
	id, err := structload.ParseTypeID(node.Text())
	if err != nil {
		return ctx.Reportf(result.New(result.Convert, result.Unsupported), "%v.", err)
	}
	*(*structload.TypeID)(target) = id
	return success(ctx)
}

func (s *Decimal) Load(target unsafe.Pointer, _ structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	if code, done := preamble(node, ctx); done {
		if node.IsExplicitDefault() {
			*(*decimal.Decimal)(target) = decimal.Zero
		}
		return code
	}
	switch node.Kind() {
	case value.KindNumber, value.KindString:
	default:
		return mismatch(ctx, node, "decimal")
	}
	d, err := decimal.NewFromString(strings.TrimSpace(node.Text()))
	if err != nil {
		return ctx.Reportf(result.New(result.Convert, result.Unsupported), "Unable to parse decimal %q: %v.", node.Text(), err)
	}
	*(*decimal.Decimal)(target) = d
	return success(ctx)
}
