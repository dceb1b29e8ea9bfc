package structload

import (
	"reflect"
	"unsafe"
)

type reflectRtti struct {
	registry *Registry
	typeID   TypeID
	rType    reflect.Type
	abstract bool
	traits   TypeTraits
}

func (r *reflectRtti) TypeID() TypeID {
	return r.typeID
}

// ActualTypeID returns dynamic type id for interface handles, Go structs carry no dynamic type so other handles report their static type
func (r *reflectRtti) ActualTypeID(instance Handle) TypeID {
	if instance.Ptr == nil || instance.Type == nil {
		return NullTypeID
	}
	if instance.Type.Kind() != reflect.Interface {
		if id, ok := r.registry.TypeIDOf(instance.Type); ok {
			return id
		}
		return r.typeID
	}
	iface := reflect.NewAt(instance.Type, instance.Ptr).Elem()
	if iface.IsNil() {
		return NullTypeID
	}
	dynamic := iface.Elem().Type()
	if dynamic.Kind() == reflect.Ptr {
		dynamic = dynamic.Elem()
	}
	id, _ := r.registry.TypeIDOf(dynamic)
	return id
}

// Cast remaps instance pointer to target type following embedded base offsets
func (r *reflectRtti) Cast(instance unsafe.Pointer, target TypeID) (unsafe.Pointer, bool) {
	if instance == nil {
		return nil, false
	}
	offset, ok := r.registry.castOffset(r.typeID, target)
	if !ok {
		return nil, false
	}
	return unsafe.Add(instance, offset), true
}

func (r *reflectRtti) IsAbstract() bool {
	return r.abstract
}

func (r *reflectRtti) TypeSize() uintptr {
	if r.rType == nil {
		return 0
	}
	return r.rType.Size()
}

func (r *reflectRtti) Traits() TypeTraits {
	return r.traits
}

func traitsOf(rType reflect.Type) TypeTraits {
	switch rType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return TraitSigned
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return TraitUnsigned
	case reflect.Float32, reflect.Float64:
		return TraitSigned | TraitFloat
	case reflect.Interface:
		return TraitInterface
	}
	return 0
}
