package unmarshal

import (
	"math"
	"strconv"
	"strings"
	"unsafe"

	"github.com/viant/structload"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
	"github.com/viant/xunsafe"
)

type enumLayout struct {
	size   uintptr
	signed bool
}

// LoadEnum loads enum from a number, a constant name or an array of flags combined with bitwise or
func LoadEnum(target unsafe.Pointer, class *structload.ClassDescriptor, node *value.Node, ctx *Context) result.Code {
	underlying := ctx.Registry.FindClassData(class.Underlying)
	if underlying == nil || underlying.Rtti == nil {
		return ctx.Reportf(result.New(result.RetrieveInfo, result.Unknown), "Unable to retrieve underlying type information for enum %v.", class.Name)
	}
	layout := enumLayout{size: underlying.Rtti.TypeSize(), signed: underlying.Rtti.Traits().Has(structload.TraitSigned)}
	switch layout.size {
	case 1:
		if layout.signed {
			return ctx.Reportf(result.New(result.ReadField, result.Unsupported), "Signed 1 byte enum %v is not supported.", class.Name)
		}
	case 2, 4, 8:
	default:
		return ctx.Reportf(result.New(result.ReadField, result.Unsupported), "Unsupported enum %v size: %v.", class.Name, layout.size)
	}

	if node.IsExplicitDefault() {
		return ctx.Report(result.New(result.ReadField, result.DefaultsUsed), "Value has an explicit default.")
	}
	var raw uint64
	var code result.Code
	switch node.Kind() {
	case value.KindNumber:
		raw, code = layout.fromNumber(node, class, ctx)
	case value.KindString:
		raw, code = layout.fromString(node.Text(), class, ctx)
	case value.KindArray:
		raw, code = layout.fromArray(node, class, ctx)
	default:
		return ctx.Reportf(result.New(result.ReadField, result.Unsupported), "Unsupported %v value for enum %v, enums can only be read from strings, numbers or arrays.", node.Kind(), class.Name)
	}
	if code.Processing != result.Completed || code.Outcome == result.DefaultsUsed {
		return code
	}
	layout.store(target, raw)
	return ctx.Report(result.New(result.ReadField, result.Success), "Successfully read enum value.")
}

func (l enumLayout) fromNumber(node *value.Node, class *structload.ClassDescriptor, ctx *Context) (uint64, result.Code) {
	if unsigned, err := node.Uint64(); err == nil {
		if raw, ok := l.fromUnsigned(unsigned); ok {
			return raw, result.Code{}
		}
	} else if signed, err := node.Int64(); err == nil {
		if raw, ok := l.fromSigned(signed); ok {
			return raw, result.Code{}
		}
	}
	return 0, ctx.Reportf(result.New(result.ReadField, result.Unsupported), "Unsupported value %v for enum %v. Available options are: %v.", node.Text(), class.Name, enumOptions(class))
}

func (l enumLayout) fromString(text string, class *structload.ClassDescriptor, ctx *Context) (uint64, result.Code) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ctx.Report(result.New(result.ReadField, result.DefaultsUsed), "Empty enum value, default used.")
	}
	if l.signed {
		if signed, err := strconv.ParseInt(text, 10, 64); err == nil {
			if raw, ok := l.fromSigned(signed); ok {
				return raw, result.Code{}
			}
		}
	} else if unsigned, err := strconv.ParseUint(text, 10, 64); err == nil {
		if raw, ok := l.fromUnsigned(unsigned); ok {
			return raw, result.Code{}
		}
	}
	for _, constant := range class.EnumValues {
		if strings.EqualFold(constant.Name, text) {
			return constant.Value & l.mask(), result.Code{}
		}
	}
	return 0, ctx.Reportf(result.New(result.ReadField, result.Unsupported), "Unsupported value %q for enum %v. Available options are: %v.", text, class.Name, enumOptions(class))
}

func (l enumLayout) fromArray(node *value.Node, class *structload.ClassDescriptor, ctx *Context) (uint64, result.Code) {
	items := node.Items()
	if len(items) == 0 {
		return 0, ctx.Report(result.New(result.ReadField, result.DefaultsUsed), "Empty enum flags, default used.")
	}
	var combined uint64
	for i, item := range items {
		ctx.PushIndex(i)
		var raw uint64
		code := result.Code{}
		switch item.Kind() {
		case value.KindNumber:
			raw, code = l.fromNumber(item, class, ctx)
		case value.KindString:
			raw, code = l.fromString(item.Text(), class, ctx)
		default:
			code = ctx.Reportf(result.New(result.ReadField, result.Unsupported), "Unsupported %v flag for enum %v, flags can only be read from strings or numbers.", item.Kind(), class.Name)
		}
		ctx.PopPath()
		if code.Processing != result.Completed {
			return 0, code
		}
		combined |= raw
	}
	return combined, result.Code{}
}

func (l enumLayout) fromUnsigned(v uint64) (uint64, bool) {
	if l.signed {
		if v > uint64(l.maxSigned()) {
			return 0, false
		}
		return v, true
	}
	if v > l.mask() {
		return 0, false
	}
	return v, true
}

func (l enumLayout) fromSigned(v int64) (uint64, bool) {
	if !l.signed {
		if v < 0 {
			return 0, false
		}
		return l.fromUnsigned(uint64(v))
	}
	if v > l.maxSigned() || v < -l.maxSigned()-1 {
		return 0, false
	}
	return uint64(v) & l.mask(), true
}

func (l enumLayout) mask() uint64 {
	if l.size >= 8 {
		return math.MaxUint64
	}
	return (uint64(1) << (8 * l.size)) - 1
}

func (l enumLayout) maxSigned() int64 {
	return int64(l.mask() >> 1)
}

func (l enumLayout) store(target unsafe.Pointer, raw uint64) {
	switch l.size {
	case 1:
		*xunsafe.AsUint8Ptr(target) = uint8(raw)
	case 2:
		*xunsafe.AsUint16Ptr(target) = uint16(raw)
	case 4:
		*xunsafe.AsUint32Ptr(target) = uint32(raw)
	default:
		*xunsafe.AsUint64Ptr(target) = raw
	}
}

func enumOptions(class *structload.ClassDescriptor) string {
	return strings.Join(class.EnumOptions(), ", ")
}
