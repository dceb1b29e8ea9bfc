package structload

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

var (
	// SliceTypeID is a generic type id shared by all slice classes
	SliceTypeID = DeriveTypeID("[]")
	// ArrayTypeID is a generic type id shared by all fixed array classes
	ArrayTypeID = DeriveTypeID("[N]")
	// MapTypeID is a generic type id shared by all string keyed map classes
	MapTypeID = DeriveTypeID("map[string]")
)

var builtinTypes = []reflect.Type{
	reflect.TypeOf(false),
	reflect.TypeOf(""),
	reflect.TypeOf(int(0)),
	reflect.TypeOf(int8(0)),
	reflect.TypeOf(int16(0)),
	reflect.TypeOf(int32(0)),
	reflect.TypeOf(int64(0)),
	reflect.TypeOf(uint(0)),
	reflect.TypeOf(uint8(0)),
	reflect.TypeOf(uint16(0)),
	reflect.TypeOf(uint32(0)),
	reflect.TypeOf(uint64(0)),
	reflect.TypeOf(float32(0)),
	reflect.TypeOf(float64(0)),
}

// Registry holds class descriptors, it is safe for concurrent use, descriptors are immutable once registered
type Registry struct {
	mux     sync.RWMutex
	classes map[TypeID]*ClassDescriptor
	byType  map[reflect.Type]TypeID
	byName  map[uint64][]TypeID
}

// FindClassData returns class descriptor or nil
func (r *Registry) FindClassData(id TypeID) *ClassDescriptor {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.classes[id]
}

// FindClassIDsByNameHash returns all type ids registered under a name hash
func (r *Registry) FindClassIDsByNameHash(hash uint64) []TypeID {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ids := r.byName[hash]
	if len(ids) == 0 {
		return nil
	}
	ret := make([]TypeID, len(ids))
	copy(ret, ids)
	return ret
}

// FindClassIDsByName returns all type ids registered under a name
func (r *Registry) FindClassIDsByName(name string) []TypeID {
	return r.FindClassIDsByNameHash(NameHash(name))
}

// UnderlyingTypeID returns enum underlying type id, or supplied id for any other type
func (r *Registry) UnderlyingTypeID(id TypeID) TypeID {
	class := r.FindClassData(id)
	if class == nil || !class.IsEnum() {
		return id
	}
	return class.Underlying
}

// CanDowncast returns true if an instance of from type can be stored as to type
func (r *Registry) CanDowncast(from, to TypeID, _, _ RttiHelper) bool {
	_, ok := r.castOffset(from, to)
	return ok
}

// TypeIDOf returns type id registered for a Go type
func (r *Registry) TypeIDOf(rType reflect.Type) (TypeID, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	id, ok := r.byType[rType]
	return id, ok
}

// ClassOf returns class descriptor registered for a Go type
func (r *Registry) ClassOf(rType reflect.Type) *ClassDescriptor {
	r.mux.RLock()
	defer r.mux.RUnlock()
	id, ok := r.byType[rType]
	if !ok {
		return nil
	}
	return r.classes[id]
}

// Classes returns all registered classes
func (r *Registry) Classes() []*ClassDescriptor {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret := make([]*ClassDescriptor, 0, len(r.classes))
	for _, class := range r.classes {
		ret = append(ret, class)
	}
	return ret
}

// RegisterClass registers prebuilt class descriptor
func (r *Registry) RegisterClass(class *ClassDescriptor, aliases ...string) error {
	if class == nil || class.TypeID.IsNull() {
		return fmt.Errorf("invalid class: missing type id")
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	if prev, ok := r.classes[class.TypeID]; ok && prev.Type != class.Type {
		return fmt.Errorf("type id %v already registered for %v", class.TypeID, prev.Name)
	}
	r.put(class, aliases)
	return nil
}

func (r *Registry) put(class *ClassDescriptor, aliases []string) {
	r.classes[class.TypeID] = class
	if class.Type != nil {
		// a Go type can back several prebuilt classes, the first registered one owns it
		if _, ok := r.byType[class.Type]; !ok {
			r.byType[class.Type] = class.TypeID
		}
	}
	if class.Rtti == nil {
		class.Rtti = &reflectRtti{registry: r, typeID: class.TypeID, rType: class.Type, abstract: class.Abstract}
		if class.Type != nil {
			class.Rtti.(*reflectRtti).traits = traitsOf(class.Type)
		}
	}
	r.addName(class.Name, class.TypeID)
	for _, alias := range aliases {
		r.addName(alias, class.TypeID)
	}
}

func (r *Registry) addName(name string, id TypeID) {
	if name == "" {
		return
	}
	hash := NameHash(name)
	for _, candidate := range r.byName[hash] {
		if candidate == id {
			return
		}
	}
	r.byName[hash] = append(r.byName[hash], id)
}

// castOffset returns byte offset to apply when casting an instance of from type to to type
func (r *Registry) castOffset(from, to TypeID) (uintptr, bool) {
	if from == to {
		return 0, true
	}
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.castOffsetLocked(from, to, 0)
}

func (r *Registry) castOffsetLocked(from, to TypeID, depth int) (uintptr, bool) {
	if from == to {
		return 0, true
	}
	if depth > 32 {
		return 0, false
	}
	fromClass := r.classes[from]
	toClass := r.classes[to]
	if fromClass == nil || toClass == nil {
		return 0, false
	}
	if toClass.IsInterface() && fromClass.Type != nil && !fromClass.IsInterface() && !r.isOpaque(toClass) {
		if reflect.PointerTo(fromClass.Type).Implements(toClass.Type) {
			return 0, true
		}
	}
	for _, implemented := range fromClass.Implements {
		if _, ok := r.castOffsetLocked(implemented, to, depth+1); ok {
			return 0, true
		}
	}
	for _, element := range fromClass.Elements {
		if !element.IsBaseClass() {
			continue
		}
		if offset, ok := r.castOffsetLocked(element.TypeID, to, depth+1); ok {
			return element.Offset + offset, true
		}
	}
	return 0, false
}

// isOpaque returns true for an abstract class backed by the empty interface under its own id, only declared implementations cast to it
func (r *Registry) isOpaque(class *ClassDescriptor) bool {
	return class.Type.NumMethod() == 0 && class.TypeID != TypeIDFor(class.Type)
}

// Cast casts instance of from type to to type
func (r *Registry) Cast(instance unsafe.Pointer, from, to TypeID) (unsafe.Pointer, bool) {
	offset, ok := r.castOffset(from, to)
	if !ok || instance == nil {
		return nil, false
	}
	return unsafe.Add(instance, offset), true
}

// ElementCount returns number of declared elements with base class elements flattened
func (r *Registry) ElementCount(class *ClassDescriptor) int {
	count := 0
	for _, element := range class.Elements {
		if element.IsBaseClass() {
			if base := r.FindClassData(element.TypeID); base != nil {
				count += r.ElementCount(base)
			}
			continue
		}
		count++
	}
	return count
}

// NewRegistry creates a registry with built-in scalar classes
func NewRegistry() *Registry {
	ret := &Registry{
		classes: map[TypeID]*ClassDescriptor{},
		byType:  map[reflect.Type]TypeID{},
		byName:  map[uint64][]TypeID{},
	}
	for _, rType := range builtinTypes {
		ret.put(&ClassDescriptor{
			TypeID:  TypeIDFor(rType),
			Name:    rType.Name(),
			Type:    rType,
			Factory: NewReflectFactory(rType),
		}, nil)
	}
	return ret
}
