package structload

import (
	"reflect"
	"unsafe"
)

type (
	reflectFactory struct {
		rType reflect.Type
	}

	funcFactory struct {
		create  func() unsafe.Pointer
		destroy func(unsafe.Pointer)
	}
)

// Create allocates zero value instance
func (f *reflectFactory) Create(_ string) unsafe.Pointer {
	return reflect.New(f.rType).UnsafePointer()
}

// Destroy calls Destroy method if instance implements Destroyer, memory itself is reclaimed by GC
func (f *reflectFactory) Destroy(instance unsafe.Pointer) {
	if instance == nil {
		return
	}
	if destroyer, ok := reflect.NewAt(f.rType, instance).Interface().(Destroyer); ok {
		destroyer.Destroy()
	}
}

func (f *funcFactory) Create(_ string) unsafe.Pointer {
	return f.create()
}

func (f *funcFactory) Destroy(instance unsafe.Pointer) {
	if f.destroy != nil && instance != nil {
		f.destroy(instance)
	}
}

// NewFactory creates a factory from create and destroy functions, destroy is optional
func NewFactory(create func() unsafe.Pointer, destroy func(unsafe.Pointer)) Factory {
	return &funcFactory{create: create, destroy: destroy}
}

// NewReflectFactory creates a reflect.New backed factory
func NewReflectFactory(rType reflect.Type) Factory {
	return &reflectFactory{rType: rType}
}
