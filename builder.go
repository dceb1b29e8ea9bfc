package structload

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/viant/structload/internal/tagutil"
	"github.com/viant/xunsafe"
)

type (
	registerOptions struct {
		typeID     TypeID
		name       string
		aliases    []string
		factory    Factory
		abstract   bool
		implements []reflect.Type
	}

	//RegisterOption customizes class registration
	RegisterOption func(o *registerOptions)
)

// WithTypeID assigns an explicit type id
func WithTypeID(id TypeID) RegisterOption {
	return func(o *registerOptions) {
		o.typeID = id
	}
}

// WithName overrides registered type name, used to resolve $type hints
func WithName(name string) RegisterOption {
	return func(o *registerOptions) {
		o.name = name
	}
}

// WithAliases registers additional type names
func WithAliases(aliases ...string) RegisterOption {
	return func(o *registerOptions) {
		o.aliases = append(o.aliases, aliases...)
	}
}

// WithFactory overrides default reflect factory
func WithFactory(factory Factory) RegisterOption {
	return func(o *registerOptions) {
		o.factory = factory
	}
}

// WithAbstract marks a type as non instantiable
func WithAbstract() RegisterOption {
	return func(o *registerOptions) {
		o.abstract = true
	}
}

// WithImplements declares types an instance can be stored as, besides embedded structs and implemented interfaces
func WithImplements(types ...reflect.Type) RegisterOption {
	return func(o *registerOptions) {
		o.implements = append(o.implements, types...)
	}
}

func newRegisterOptions(opts []RegisterOption) *registerOptions {
	ret := &registerOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(ret)
		}
	}
	return ret
}

// Register reflects a Go type with all reachable field types
func (r *Registry) Register(rType reflect.Type, opts ...RegisterOption) (*ClassDescriptor, error) {
	if rType == nil {
		return nil, fmt.Errorf("invalid type: nil")
	}
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.register(rType, newRegisterOptions(opts))
}

// RegisterEnum registers a named integer type as an enum with supplied constants
func (r *Registry) RegisterEnum(rType reflect.Type, constants []EnumConstant, opts ...RegisterOption) (*ClassDescriptor, error) {
	if rType == nil {
		return nil, fmt.Errorf("invalid enum type: nil")
	}
	base, ok := builtinKindType(rType.Kind())
	if !ok || !isIntegerKind(rType.Kind()) {
		return nil, fmt.Errorf("invalid enum type: %v, expected integer kind", rType.String())
	}
	options := newRegisterOptions(opts)
	r.mux.Lock()
	defer r.mux.Unlock()
	id := options.typeID
	if id.IsNull() {
		id = TypeIDFor(rType)
	}
	if prev, ok := r.byType[rType]; ok && prev != id {
		return nil, fmt.Errorf("enum %v already registered as %v", rType.String(), prev)
	}
	class := &ClassDescriptor{
		TypeID:     id,
		Name:       nameOf(rType, options),
		Type:       rType,
		Factory:    options.factory,
		Underlying: TypeIDFor(base),
		EnumValues: append([]EnumConstant{}, constants...),
	}
	if class.Factory == nil {
		class.Factory = NewReflectFactory(rType)
	}
	class.Rtti = &reflectRtti{registry: r, typeID: id, rType: rType, traits: traitsOf(rType) | TraitEnum}
	r.put(class, options.aliases)
	return class, nil
}

func (r *Registry) register(rType reflect.Type, options *registerOptions) (*ClassDescriptor, error) {
	if prev, ok := r.byType[rType]; ok {
		class := r.classes[prev]
		if !options.typeID.IsNull() && options.typeID != prev {
			return nil, fmt.Errorf("type %v already registered as %v", rType.String(), prev)
		}
		r.amend(class, options)
		return class, nil
	}
	id := options.typeID
	if id.IsNull() {
		id = TypeIDFor(rType)
	}
	class := &ClassDescriptor{
		TypeID:   id,
		Name:     nameOf(rType, options),
		Type:     rType,
		Factory:  options.factory,
		Abstract: options.abstract,
	}
	switch rType.Kind() {
	case reflect.Interface:
		class.Abstract = true
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128, reflect.Uintptr:
		return nil, fmt.Errorf("unsupported type: %v", rType.String())
	}
	if class.Factory == nil && !class.Abstract {
		class.Factory = NewReflectFactory(rType)
	}
	// published before walking fields so self referencing types terminate
	r.put(class, options.aliases)

	var err error
	switch rType.Kind() {
	case reflect.Struct:
		err = r.buildElements(class)
	case reflect.Slice, reflect.Array:
		err = r.buildSequence(class)
	case reflect.Map:
		err = r.buildMap(class)
	default:
		if base, ok := builtinKindType(rType.Kind()); ok && base != rType {
			class.GenericTypeID = TypeIDFor(base)
		}
	}
	if err != nil {
		r.unregister(class)
		return nil, err
	}
	for _, implemented := range options.implements {
		implClass, err := r.register(derefType(implemented), &registerOptions{})
		if err != nil {
			return nil, err
		}
		class.Implements = append(class.Implements, implClass.TypeID)
	}
	return class, nil
}

func (r *Registry) amend(class *ClassDescriptor, options *registerOptions) {
	if options.name != "" && options.name != class.Name {
		class.Name = options.name
		r.addName(options.name, class.TypeID)
	}
	for _, alias := range options.aliases {
		r.addName(alias, class.TypeID)
	}
	if options.factory != nil {
		class.Factory = options.factory
	}
	if options.abstract {
		class.Abstract = true
		if rtti, ok := class.Rtti.(*reflectRtti); ok {
			rtti.abstract = true
		}
	}
	for _, implemented := range options.implements {
		if implClass, err := r.register(derefType(implemented), &registerOptions{}); err == nil {
			class.Implements = append(class.Implements, implClass.TypeID)
		}
	}
}

func (r *Registry) unregister(class *ClassDescriptor) {
	delete(r.classes, class.TypeID)
	delete(r.byType, class.Type)
	hash := NameHash(class.Name)
	ids := r.byName[hash][:0]
	for _, id := range r.byName[hash] {
		if id != class.TypeID {
			ids = append(ids, id)
		}
	}
	r.byName[hash] = ids
}

func (r *Registry) buildElements(class *ClassDescriptor) error {
	rType := class.Type
	var bases, declared []*ElementDescriptor
	var markerField *reflect.StructField
	byField := map[string]*ElementDescriptor{}
	for i := 0; i < rType.NumField(); i++ {
		sf := rType.Field(i)
		if sf.PkgPath != "" && !(sf.Anonymous && sf.Type.Kind() == reflect.Struct) {
			continue
		}
		if IsSetMarker(sf.Tag) {
			markerField = &sf
			continue
		}
		tag := tagutil.ResolveFieldTag(sf)
		if tag.Ignore || !isSupportedKind(sf.Type) {
			continue
		}
		element := &ElementDescriptor{
			Name:   tag.Name,
			Offset: sf.Offset,
			Type:   sf.Type,
			xField: xunsafe.NewField(sf),
		}
		if tag.Inline && sf.Type.Kind() == reflect.Struct && !tag.Explicit {
			element.Name = sf.Type.Name()
			if element.Name == "" {
				element.Name = sf.Name
			}
			element.Flags |= ElementBaseClass
		}
		elemID, pointer, err := r.slotTypeID(sf.Type)
		if err != nil {
			return fmt.Errorf("failed to register %v.%v: %w", class.Name, sf.Name, err)
		}
		element.TypeID = elemID
		if pointer {
			element.Flags |= ElementPointer
		}
		element.NameHash = NameHash(element.Name)
		byField[sf.Name] = element
		if element.IsBaseClass() {
			bases = append(bases, element)
			continue
		}
		declared = append(declared, element)
	}
	sort.SliceStable(bases, func(i, j int) bool { return bases[i].Offset < bases[j].Offset })
	class.Elements = append(bases, declared...)
	if markerField != nil {
		marker, err := newMarker(*markerField, byField)
		if err != nil {
			return fmt.Errorf("failed to register %v: %w", class.Name, err)
		}
		class.Marker = marker
	}
	return nil
}

func (r *Registry) buildSequence(class *ClassDescriptor) error {
	elemID, pointer, err := r.slotTypeID(class.Type.Elem())
	if err != nil {
		return err
	}
	class.Container = &ContainerInfo{Kind: ContainerSlice, Elem: elemID, ElemPointer: pointer}
	class.GenericTypeID = SliceTypeID
	if class.Type.Kind() == reflect.Array {
		class.Container.Kind = ContainerArray
		class.Container.Len = class.Type.Len()
		class.GenericTypeID = ArrayTypeID
	}
	return nil
}

func (r *Registry) buildMap(class *ClassDescriptor) error {
	if class.Type.Key().Kind() != reflect.String {
		return fmt.Errorf("unsupported map key: %v", class.Type.Key().String())
	}
	keyClass, err := r.register(class.Type.Key(), &registerOptions{})
	if err != nil {
		return err
	}
	elemID, pointer, err := r.slotTypeID(class.Type.Elem())
	if err != nil {
		return err
	}
	class.Container = &ContainerInfo{Kind: ContainerMap, Key: keyClass.TypeID, Elem: elemID, ElemPointer: pointer}
	class.GenericTypeID = MapTypeID
	return nil
}

// slotTypeID registers a field or container item type, pointers and interfaces are polymorphic slots
func (r *Registry) slotTypeID(rType reflect.Type) (TypeID, bool, error) {
	pointer := false
	switch rType.Kind() {
	case reflect.Ptr:
		if rType.Elem().Kind() == reflect.Ptr {
			return NullTypeID, false, fmt.Errorf("unsupported pointer to pointer: %v", rType.String())
		}
		rType = rType.Elem()
		pointer = true
	case reflect.Interface:
		pointer = true
	}
	class, err := r.register(rType, &registerOptions{})
	if err != nil {
		return NullTypeID, false, err
	}
	return class.TypeID, pointer, nil
}

func nameOf(rType reflect.Type, options *registerOptions) string {
	if options.name != "" {
		return options.name
	}
	if rType.Name() != "" {
		return rType.Name()
	}
	return rType.String()
}

func derefType(rType reflect.Type) reflect.Type {
	if rType.Kind() == reflect.Ptr {
		return rType.Elem()
	}
	return rType
}

func isSupportedKind(rType reflect.Type) bool {
	switch derefType(rType).Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128, reflect.Uintptr:
		return false
	}
	return true
}

func isIntegerKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func builtinKindType(kind reflect.Kind) (reflect.Type, bool) {
	for _, candidate := range builtinTypes {
		if candidate.Kind() == kind {
			return candidate, true
		}
	}
	return nil, false
}
