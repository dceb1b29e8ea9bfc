package unmarshal

import (
	"reflect"
	"unsafe"

	"github.com/viant/structload"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

type (
	// slot accesses a *T or interface holder of a polymorphic instance
	slot struct {
		ptr      unsafe.Pointer
		declared *structload.ClassDescriptor
	}

	// ownership destroys an instance created by the loader unless defused
	ownership struct {
		instance unsafe.Pointer
		factory  structload.Factory
	}
)

func (o *ownership) take(instance unsafe.Pointer, factory structload.Factory) {
	o.instance = instance
	o.factory = factory
}

func (o *ownership) defuse() {
	o.instance = nil
}

func (o *ownership) release() {
	if o.instance == nil {
		return
	}
	instance := o.instance
	o.instance = nil
	o.factory.Destroy(instance)
}

func (s *slot) isInterface() bool {
	return s.declared.IsInterface()
}

// held returns held instance with its actual type id, valueHeld reports an interface holding a non pointer value that can not be updated in place
func (s *slot) held() (instance unsafe.Pointer, actualID structload.TypeID, valueHeld bool) {
	if !s.isInterface() {
		instance = *(*unsafe.Pointer)(s.ptr)
		if instance == nil {
			return nil, structload.NullTypeID, false
		}
		return instance, s.declared.Rtti.ActualTypeID(structload.Handle{Ptr: instance, Type: s.declared.Type}), false
	}
	iface := reflect.NewAt(s.declared.Type, s.ptr).Elem()
	if iface.IsNil() {
		return nil, structload.NullTypeID, false
	}
	dynamic := iface.Elem()
	if dynamic.Kind() != reflect.Ptr || dynamic.IsNil() {
		return nil, structload.NullTypeID, true
	}
	return dynamic.UnsafePointer(), s.declared.Rtti.ActualTypeID(structload.Handle{Ptr: s.ptr, Type: s.declared.Type}), false
}

// store casts instance of class to declared slot type and stores it
func (s *slot) store(instance unsafe.Pointer, class *structload.ClassDescriptor) bool {
	if !s.isInterface() {
		cast, ok := class.Rtti.Cast(instance, s.declared.TypeID)
		if !ok {
			return false
		}
		*(*unsafe.Pointer)(s.ptr) = cast
		return true
	}
	if class.Type == nil {
		return false
	}
	held := reflect.NewAt(class.Type, instance)
	if !held.Type().AssignableTo(s.declared.Type) {
		return false
	}
	reflect.NewAt(s.declared.Type, s.ptr).Elem().Set(held)
	return true
}

// value returns interface slot content
func (s *slot) value() reflect.Value {
	ret := reflect.New(s.declared.Type).Elem()
	ret.Set(reflect.NewAt(s.declared.Type, s.ptr).Elem())
	return ret
}

func (s *slot) restore(prior reflect.Value) {
	reflect.NewAt(s.declared.Type, s.ptr).Elem().Set(prior)
}

func (s *slot) clear() {
	if !s.isInterface() {
		*(*unsafe.Pointer)(s.ptr) = nil
		return
	}
	holder := reflect.NewAt(s.declared.Type, s.ptr).Elem()
	holder.Set(reflect.Zero(s.declared.Type))
}

// LoadToPointer loads node into a pointer or interface slot, it creates, reuses or replaces held instance.
// An instance created by this call is destroyed if the load altered or halted.
func LoadToPointer(target unsafe.Pointer, typeID structload.TypeID, node *value.Node, ctx *Context) result.Code {
	declared := ctx.Registry.FindClassData(typeID)
	if declared == nil || declared.Rtti == nil {
		return ctx.Reportf(result.New(result.RetrieveInfo, result.Unknown), "Unable to find class information for %v.", typeID)
	}
	holder := &slot{ptr: target, declared: declared}
	instance, actualID, valueHeld := holder.held()

	if node.IsNull() {
		if instance != nil {
			if code, ok := destroy(instance, actualID, ctx); !ok {
				return code
			}
		}
		if instance != nil || valueHeld {
			holder.clear()
		}
		return ctx.Report(result.New(result.WriteValue, result.Success), "Null pointer loaded.")
	}

	resolution := ResolveTypeID(node, typeID, declared.Rtti, ctx)
	switch resolution.Determination {
	case FailedToDetermine:
		return ctx.Report(result.New(result.RetrieveInfo, result.Unknown), "Unable to determine type from the type hint.")
	case FailedDueToMultipleTypeIds:
		return ctx.Report(result.New(result.RetrieveInfo, result.Unknown), "Type hint matches multiple types, use a type id to disambiguate.")
	}
	resolvedID := resolution.TypeID
	if resolvedID != typeID {
		// a *T slot has no dynamic type, only interface slots hold other types
		if !holder.isInterface() {
			return ctx.Reportf(result.New(result.Convert, result.TypeMismatch), "Type %v can not be stored as *%v, pointer slots hold their declared type only.", resolvedID, declared.Name)
		}
		if !ctx.Registry.CanDowncast(resolvedID, typeID, nil, declared.Rtti) {
			return ctx.Reportf(result.New(result.Convert, result.TypeMismatch), "Type %v can not be stored as %v.", resolvedID, declared.Name)
		}
	}

	// a replaced value is put back if the new instance is discarded
	var prior reflect.Value
	if valueHeld {
		prior = holder.value()
	}
	discard := func() {
		if prior.IsValid() {
			holder.restore(prior)
			return
		}
		holder.clear()
	}

	if instance != nil {
		if resolution.Determination == ExplicitTypeID && resolvedID != actualID {
			if code, ok := destroy(instance, actualID, ctx); !ok {
				return code
			}
			holder.clear()
			instance = nil
		} else {
			resolvedID = actualID
		}
	}

	class := ctx.Registry.FindClassData(resolvedID)
	if class == nil || class.Rtti == nil {
		return ctx.Reportf(result.New(result.RetrieveInfo, result.Unknown), "Unable to find class information for %v.", resolvedID)
	}

	guard := &ownership{}
	defer guard.release()
	created := false
	if instance == nil {
		if class.Abstract || class.Rtti.IsAbstract() {
			return ctx.Reportf(result.New(result.CreateDefault, result.Catastrophic), "Unable to create an instance of abstract type %v.", class.Name)
		}
		if class.Factory == nil {
			return ctx.Reportf(result.New(result.CreateDefault, result.Catastrophic), "Unable to find factory for %v.", class.Name)
		}
		if instance = class.Factory.Create(class.Name); instance == nil {
			return ctx.Reportf(result.New(result.CreateDefault, result.Catastrophic), "Factory failed to create %v.", class.Name)
		}
		guard.take(instance, class.Factory)
		if !holder.store(instance, class) {
			return ctx.Reportf(result.New(result.Convert, result.Catastrophic), "Unable to cast %v to %v.", class.Name, declared.Name)
		}
		created = true
	}

	code := Load(instance, resolvedID, node, created, ctx)
	if created && (code.Processing == result.Halted || code.Processing == result.Altered) {
		discard()
		return ctx.Reportf(code, "Discarded new instance of %v after failed load.", class.Name)
	}
	if !holder.store(instance, class) {
		if created {
			discard()
		}
		return ctx.Reportf(result.New(result.Convert, result.Catastrophic), "Unable to cast %v to %v.", class.Name, declared.Name)
	}
	guard.defuse()
	return code
}

func destroy(instance unsafe.Pointer, actualID structload.TypeID, ctx *Context) (result.Code, bool) {
	class := ctx.Registry.FindClassData(actualID)
	if class == nil || class.Factory == nil {
		return ctx.Reportf(result.New(result.CreateDefault, result.Catastrophic), "Unable to find factory to destroy held instance of %v.", actualID), false
	}
	class.Factory.Destroy(instance)
	return result.Code{}, true
}
