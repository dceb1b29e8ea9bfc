package structload

import (
	"reflect"
	"unsafe"

	"github.com/viant/xunsafe"
)

type (
	//ElementFlags describes element slot kind
	ElementFlags uint8

	//TypeTraits describes runtime type traits
	TypeTraits uint32

	//ContainerKind represents container kind
	ContainerKind int

	//Handle represents a typed instance handle
	Handle struct {
		Ptr  unsafe.Pointer
		Type reflect.Type
	}

	//RttiHelper provides runtime type information for a registered type
	RttiHelper interface {
		//TypeID returns static type id
		TypeID() TypeID
		//ActualTypeID returns type id of the instance held by a handle
		ActualTypeID(instance Handle) TypeID
		//Cast casts instance pointer to target type, it returns false if types are unrelated
		Cast(instance unsafe.Pointer, target TypeID) (unsafe.Pointer, bool)
		//IsAbstract returns true if type can not be instantiated
		IsAbstract() bool
		TypeSize() uintptr
		Traits() TypeTraits
	}

	//Factory creates and destroys instances
	Factory interface {
		Create(debugTag string) unsafe.Pointer
		Destroy(instance unsafe.Pointer)
	}

	//Destroyer is implemented by types that need to release resources when a loader discards them
	Destroyer interface {
		Destroy()
	}

	//EnumConstant represents named enum value, Value holds the raw bit pattern
	EnumConstant struct {
		Name  string
		Value uint64
	}

	//ContainerInfo describes container element layout
	ContainerInfo struct {
		Kind        ContainerKind
		Elem        TypeID
		ElemPointer bool
		Key         TypeID
		Len         int
	}

	//ElementDescriptor represents a class member slot
	ElementDescriptor struct {
		Name     string
		NameHash uint64
		Offset   uintptr
		TypeID   TypeID
		Type     reflect.Type
		Flags    ElementFlags
		xField   *xunsafe.Field
	}

	//ClassDescriptor represents reflected type metadata
	ClassDescriptor struct {
		TypeID        TypeID
		Name          string
		Type          reflect.Type
		Elements      []*ElementDescriptor
		Factory       Factory
		Rtti          RttiHelper
		Container     *ContainerInfo
		GenericTypeID TypeID
		Underlying    TypeID
		EnumValues    []EnumConstant
		Abstract      bool
		Implements    []TypeID
		Marker        *Marker
	}
)

const (
	ElementBaseClass ElementFlags = 1 << iota
	ElementPointer
)

const (
	TraitSigned TypeTraits = 1 << iota
	TraitUnsigned
	TraitEnum
	TraitFloat
	TraitInterface
)

const (
	ContainerSlice ContainerKind = iota + 1
	ContainerArray
	ContainerMap
)

// IsBaseClass returns true for embedded base class element
func (e *ElementDescriptor) IsBaseClass() bool {
	return e.Flags&ElementBaseClass != 0
}

// IsPointer returns true for pointer or interface element
func (e *ElementDescriptor) IsPointer() bool {
	return e.Flags&ElementPointer != 0
}

// Pointer returns element address for supplied owner address
func (e *ElementDescriptor) Pointer(owner unsafe.Pointer) unsafe.Pointer {
	if e.xField != nil {
		return e.xField.Pointer(owner)
	}
	return unsafe.Add(owner, e.Offset)
}

// IsContainer returns true for slice, array and map classes
func (c *ClassDescriptor) IsContainer() bool {
	return c.Container != nil
}

// IsEnum returns true if class describes an enumeration
func (c *ClassDescriptor) IsEnum() bool {
	return !c.Underlying.IsNull() && c.Underlying != c.TypeID
}

// IsInterface returns true if class describes an interface type
func (c *ClassDescriptor) IsInterface() bool {
	return c.Type != nil && c.Type.Kind() == reflect.Interface
}

// EnumOptions returns enum constant names
func (c *ClassDescriptor) EnumOptions() []string {
	ret := make([]string, 0, len(c.EnumValues))
	for _, item := range c.EnumValues {
		ret = append(ret, item.Name)
	}
	return ret
}

// Has returns true if all flags are set
func (t TypeTraits) Has(flags TypeTraits) bool {
	return t&flags == flags
}
