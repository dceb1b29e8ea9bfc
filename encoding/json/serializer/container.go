package serializer

import (
	"reflect"
	"unsafe"

	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

type (
	// Slice loads slices from arrays, existing items are replaced
	Slice struct{}
	// Array loads fixed size arrays
	Array struct{}
	// Map loads string keyed maps from objects, existing entries are replaced
	Map struct{}
)

func (s *Slice) Flags() unmarshal.OperationFlags {
	return unmarshal.ManualDefault | unmarshal.InitializeNewInstance
}

func (s *Array) Flags() unmarshal.OperationFlags {
	return unmarshal.ManualDefault | unmarshal.InitializeNewInstance
}

func (s *Map) Flags() unmarshal.OperationFlags {
	return unmarshal.ManualDefault | unmarshal.InitializeNewInstance
}

func (s *Slice) Load(target unsafe.Pointer, typeID structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	class, code, ok := containerClass(typeID, structload.ContainerSlice, ctx)
	if !ok {
		return code
	}
	holder := reflect.NewAt(class.Type, target).Elem()
	if code, done := containerPreamble(holder, node, value.KindArray, ctx); done {
		return code
	}
	items := node.Items()
	slice := reflect.MakeSlice(class.Type, 0, len(items))
	ret := result.Code{Task: result.ReadField}
	for i, item := range items {
		ctx.PushIndex(i)
		elem, code := loadItem(class, item, ctx)
		ctx.PopPath()
		ret = ret.Combine(code)
		if code.Processing == result.Halted {
			return ret
		}
		if code.Processing == result.Altered {
			ctx.Reportf(code, "Dropped item %v.", i)
			continue
		}
		slice = reflect.Append(slice, elem)
	}
	holder.Set(slice)
	return ret
}

func (s *Array) Load(target unsafe.Pointer, typeID structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	class, code, ok := containerClass(typeID, structload.ContainerArray, ctx)
	if !ok {
		return code
	}
	holder := reflect.NewAt(class.Type, target).Elem()
	if code, done := containerPreamble(holder, node, value.KindArray, ctx); done {
		return code
	}
	items := node.Items()
	array := reflect.New(class.Type).Elem()
	ret := result.Code{Task: result.ReadField}
	for i, item := range items {
		if i >= class.Container.Len {
			ret = ret.Combine(ctx.Reportf(result.New(result.ReadField, result.PartialSkip), "Skipped %v items exceeding array size %v.", len(items)-i, class.Container.Len))
			break
		}
		ctx.PushIndex(i)
		elem, code := loadItem(class, item, ctx)
		ctx.PopPath()
		ret = ret.Combine(code)
		if code.Processing == result.Halted {
			return ret
		}
		if code.Processing != result.Altered {
			array.Index(i).Set(elem)
		}
	}
	if len(items) < class.Container.Len {
		ret = ret.Combine(result.New(result.ReadField, result.PartialDefaults))
	}
	holder.Set(array)
	return ret
}

func (s *Map) Load(target unsafe.Pointer, typeID structload.TypeID, node *value.Node, ctx *unmarshal.Context) result.Code {
	class, code, ok := containerClass(typeID, structload.ContainerMap, ctx)
	if !ok {
		return code
	}
	holder := reflect.NewAt(class.Type, target).Elem()
	if code, done := containerPreamble(holder, node, value.KindObject, ctx); done {
		return code
	}
	members := node.Members()
	aMap := reflect.MakeMapWithSize(class.Type, len(members))
	keyType := class.Type.Key()
	ret := result.Code{Task: result.ReadField}
	for _, member := range members {
		ctx.PushField(member.Name)
		elem, code := loadItem(class, member.Value, ctx)
		ctx.PopPath()
		ret = ret.Combine(code)
		if code.Processing == result.Halted {
			return ret
		}
		if code.Processing == result.Altered {
			continue
		}
		aMap.SetMapIndex(reflect.ValueOf(member.Name).Convert(keyType), elem)
	}
	holder.Set(aMap)
	return ret
}

func containerClass(typeID structload.TypeID, kind structload.ContainerKind, ctx *unmarshal.Context) (*structload.ClassDescriptor, result.Code, bool) {
	class := ctx.Registry.FindClassData(typeID)
	if class == nil || class.Container == nil || class.Container.Kind != kind || class.Type == nil {
		return nil, ctx.Reportf(result.New(result.RetrieveInfo, result.Unknown), "Unable to retrieve container information for %v.", typeID), false
	}
	return class, result.Code{}, true
}

// containerPreamble resets container on explicit default
func containerPreamble(holder reflect.Value, node *value.Node, expected value.Kind, ctx *unmarshal.Context) (result.Code, bool) {
	if node.IsExplicitDefault() {
		holder.Set(reflect.Zero(holder.Type()))
		return ctx.Report(result.New(result.ReadField, result.DefaultsUsed), "Container cleared by explicit default."), true
	}
	if node.IsNull() {
		return preamble(node, ctx)
	}
	if node.Kind() != expected {
		return mismatch(ctx, node, expected.String()), true
	}
	return result.Code{}, false
}

// loadItem loads container item into a new element, pointer and interface items are resolved as polymorphic slots
func loadItem(class *structload.ClassDescriptor, node *value.Node, ctx *unmarshal.Context) (reflect.Value, result.Code) {
	elem := reflect.New(class.Type.Elem())
	flags := unmarshal.LoadAsNewInstance
	if class.Container.ElemPointer {
		flags = unmarshal.ResolvePointer
	}
	code := ctx.Continue(elem.UnsafePointer(), class.Container.Elem, node, flags)
	return elem.Elem(), code
}
