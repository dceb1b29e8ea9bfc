package typedef

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viant/structload"
)

const discriminatorField = "XTypedef"

var emptyInterface = reflect.TypeOf((*interface{})(nil)).Elem()

var builtins = map[string]reflect.Type{
	"bool":    reflect.TypeOf(false),
	"string":  reflect.TypeOf(""),
	"int":     reflect.TypeOf(int(0)),
	"int8":    reflect.TypeOf(int8(0)),
	"int16":   reflect.TypeOf(int16(0)),
	"int32":   reflect.TypeOf(int32(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"uint":    reflect.TypeOf(uint(0)),
	"uint8":   reflect.TypeOf(uint8(0)),
	"uint16":  reflect.TypeOf(uint16(0)),
	"uint32":  reflect.TypeOf(uint32(0)),
	"uint64":  reflect.TypeOf(uint64(0)),
	"float32": reflect.TypeOf(float32(0)),
	"float64": reflect.TypeOf(float64(0)),
	"time":    reflect.TypeOf(time.Time{}),
	"uuid":    reflect.TypeOf(uuid.UUID{}),
	"decimal": reflect.TypeOf(decimal.Decimal{}),
	"typeid":  reflect.TypeOf(structload.TypeID{}),
}

// Schema represents types built from definitions and registered with a registry
type Schema struct {
	registry    *structload.Registry
	definitions map[string]*Definition
	classes     map[string]*structload.ClassDescriptor
	building    map[string]bool
	order       []string
}

// Registry returns registry holding schema classes
func (s *Schema) Registry() *structload.Registry {
	return s.registry
}

// Names returns defined type names in definition order
func (s *Schema) Names() []string {
	return append([]string{}, s.order...)
}

// Class returns class of a defined type or a type expression
func (s *Schema) Class(name string) (*structload.ClassDescriptor, bool) {
	ret, ok := s.classes[name]
	return ret, ok
}

// New returns pointer to a new zero instance of a defined struct type
func (s *Schema) New(name string) (interface{}, error) {
	class, ok := s.classes[name]
	if !ok {
		return nil, fmt.Errorf("unknown type: %v", name)
	}
	if class.Abstract {
		return nil, fmt.Errorf("type %v is abstract", name)
	}
	return reflect.New(class.Type).Interface(), nil
}

// Field returns named field value of an instance created with New
func (s *Schema) Field(instance interface{}, name string) (interface{}, error) {
	rValue := reflect.ValueOf(instance)
	if rValue.Kind() != reflect.Ptr || rValue.IsNil() {
		return nil, fmt.Errorf("invalid instance: %T", instance)
	}
	rValue = rValue.Elem()
	class := s.registry.ClassOf(rValue.Type())
	if class == nil {
		return nil, fmt.Errorf("unknown instance type: %v", rValue.Type().String())
	}
	for _, element := range class.Elements {
		if element.Name == name {
			return reflect.NewAt(element.Type, element.Pointer(rValue.Addr().UnsafePointer())).Elem().Interface(), nil
		}
	}
	return nil, fmt.Errorf("unknown field %v.%v", class.Name, name)
}

// Load reads type definitions file and registers its types
func Load(path string, registry *structload.Registry) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read type definitions %v: %w", path, err)
	}
	return Parse(data, registry)
}

// Parse decodes YAML type definitions and registers its types
func Parse(data []byte, registry *structload.Registry) (*Schema, error) {
	document, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Build(document, registry)
}

// Build registers document types with the registry
func Build(document *Document, registry *structload.Registry) (*Schema, error) {
	if registry == nil {
		registry = structload.NewRegistry()
	}
	ret := &Schema{
		registry:    registry,
		definitions: map[string]*Definition{},
		classes:     map[string]*structload.ClassDescriptor{},
		building:    map[string]bool{},
	}
	for _, def := range document.Types {
		ret.definitions[def.Name] = def
		ret.order = append(ret.order, def.Name)
	}
	for _, name := range ret.order {
		if _, err := ret.resolve(name); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// resolve returns class for a type expression, building it on first use
func (s *Schema) resolve(expr string) (*structload.ClassDescriptor, error) {
	expr = strings.TrimSpace(expr)
	if class, ok := s.classes[expr]; ok {
		return class, nil
	}
	var class *structload.ClassDescriptor
	var err error
	switch {
	case strings.HasPrefix(expr, "*"):
		return nil, fmt.Errorf("invalid type %v: pointers are only allowed for fields and items", expr)
	case strings.HasPrefix(expr, "[]"):
		class, err = s.buildSequence(expr, expr[2:], -1)
	case strings.HasPrefix(expr, "map[string]"):
		class, err = s.buildMap(expr, expr[len("map[string]"):])
	case strings.HasPrefix(expr, "["):
		index := strings.Index(expr, "]")
		if index == -1 {
			return nil, fmt.Errorf("invalid type %v: missing ]", expr)
		}
		size, convErr := strconv.Atoi(expr[1:index])
		if convErr != nil || size < 0 {
			return nil, fmt.Errorf("invalid type %v: invalid array length", expr)
		}
		class, err = s.buildSequence(expr, expr[index+1:], size)
	default:
		if rType, ok := builtins[expr]; ok {
			class, err = s.registry.Register(rType)
			break
		}
		class, err = s.buildDefined(expr)
	}
	if err != nil {
		return nil, err
	}
	s.classes[expr] = class
	return class, nil
}

// slot returns Go type, type id and pointer flag of a field or container item
func (s *Schema) slot(expr string) (reflect.Type, structload.TypeID, bool, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "*") {
		class, err := s.resolve(expr[1:])
		if err != nil {
			return nil, structload.NullTypeID, false, err
		}
		if class.IsInterface() || class.Type.Kind() == reflect.Ptr {
			return nil, structload.NullTypeID, false, fmt.Errorf("invalid type %v: pointer to %v", expr, class.Name)
		}
		return reflect.PointerTo(class.Type), class.TypeID, true, nil
	}
	class, err := s.resolve(expr)
	if err != nil {
		return nil, structload.NullTypeID, false, err
	}
	return class.Type, class.TypeID, class.IsInterface(), nil
}

func (s *Schema) buildSequence(expr, elem string, size int) (*structload.ClassDescriptor, error) {
	elemType, elemID, pointer, err := s.slot(elem)
	if err != nil {
		return nil, err
	}
	class := s.containerClass(expr)
	class.Container = &structload.ContainerInfo{Kind: structload.ContainerSlice, Elem: elemID, ElemPointer: pointer}
	class.GenericTypeID = structload.SliceTypeID
	class.Type = reflect.SliceOf(elemType)
	if size >= 0 {
		class.Container.Kind = structload.ContainerArray
		class.Container.Len = size
		class.GenericTypeID = structload.ArrayTypeID
		class.Type = reflect.ArrayOf(size, elemType)
	}
	return s.registerContainer(class)
}

func (s *Schema) buildMap(expr, elem string) (*structload.ClassDescriptor, error) {
	elemType, elemID, pointer, err := s.slot(elem)
	if err != nil {
		return nil, err
	}
	keyClass, err := s.resolve("string")
	if err != nil {
		return nil, err
	}
	class := s.containerClass(expr)
	class.Type = reflect.MapOf(keyClass.Type, elemType)
	class.Container = &structload.ContainerInfo{Kind: structload.ContainerMap, Key: keyClass.TypeID, Elem: elemID, ElemPointer: pointer}
	class.GenericTypeID = structload.MapTypeID
	return s.registerContainer(class)
}

// registerContainer keeps the reflected Go type owned by its generic class
func (s *Schema) registerContainer(class *structload.ClassDescriptor) (*structload.ClassDescriptor, error) {
	if _, err := s.registry.Register(class.Type); err != nil {
		return nil, err
	}
	class.Factory = structload.NewReflectFactory(class.Type)
	return class, s.registry.RegisterClass(class)
}

func (s *Schema) containerClass(expr string) *structload.ClassDescriptor {
	return &structload.ClassDescriptor{TypeID: structload.DeriveTypeID("typedef:" + expr), Name: expr}
}

func (s *Schema) buildDefined(name string) (*structload.ClassDescriptor, error) {
	def, ok := s.definitions[name]
	if !ok {
		return nil, fmt.Errorf("unknown type: %v", name)
	}
	if s.building[name] {
		return nil, fmt.Errorf("recursive type definition: %v", name)
	}
	s.building[name] = true
	defer delete(s.building, name)

	id := structload.DeriveTypeID("typedef:" + name)
	if def.ID != "" {
		var err error
		if id, err = structload.ParseTypeID(def.ID); err != nil {
			return nil, fmt.Errorf("type %v: %w", name, err)
		}
	}
	class := &structload.ClassDescriptor{TypeID: id, Name: name}
	var err error
	switch def.Kind {
	case KindInterface:
		if _, err := s.registry.Register(emptyInterface); err != nil {
			return nil, err
		}
		class.Type = emptyInterface
		class.Abstract = true
	case KindEnum:
		err = s.buildEnum(class, def)
	default:
		err = s.buildStruct(class, def)
	}
	if err != nil {
		return nil, err
	}
	for _, implemented := range def.Implements {
		implClass, err := s.resolve(implemented)
		if err != nil {
			return nil, fmt.Errorf("type %v: %w", name, err)
		}
		class.Implements = append(class.Implements, implClass.TypeID)
	}
	if err = s.registry.RegisterClass(class, def.Aliases...); err != nil {
		return nil, fmt.Errorf("failed to register %v: %w", name, err)
	}
	return class, nil
}

func (s *Schema) buildEnum(class *structload.ClassDescriptor, def *Definition) error {
	underlying, ok := builtins[def.Underlying]
	if !ok || !isInteger(underlying.Kind()) {
		return fmt.Errorf("enum %v: invalid underlying type %v", def.Name, def.Underlying)
	}
	class.Type = underlying
	class.Underlying = structload.TypeIDFor(underlying)
	class.Factory = structload.NewReflectFactory(underlying)
	for _, item := range def.Values {
		class.EnumValues = append(class.EnumValues, structload.EnumConstant{Name: item.Name, Value: uint64(item.Value)})
	}
	return nil
}

func (s *Schema) buildStruct(class *structload.ClassDescriptor, def *Definition) error {
	fields := []reflect.StructField{{
		Name: discriminatorField,
		Type: reflect.TypeOf(struct{}{}),
		Tag:  reflect.StructTag(fmt.Sprintf(`typedef:%q json:"-"`, def.Name)),
	}}
	type slotInfo struct {
		id      structload.TypeID
		pointer bool
		base    bool
		name    string
	}
	var slots []slotInfo
	for i, field := range def.Fields {
		fieldType, fieldID, pointer, err := s.slot(field.Type)
		if err != nil {
			return fmt.Errorf("type %v.%v: %w", def.Name, field.Name, err)
		}
		if field.Base && (pointer || fieldType.Kind() != reflect.Struct) {
			return fmt.Errorf("type %v.%v: base has to be a struct value", def.Name, field.Name)
		}
		fields = append(fields, reflect.StructField{
			Name: "F" + strconv.Itoa(i),
			Type: fieldType,
			Tag:  reflect.StructTag(fmt.Sprintf(`json:%q`, field.Name)),
		})
		slots = append(slots, slotInfo{id: fieldID, pointer: pointer, base: field.Base, name: field.Name})
	}
	class.Type = reflect.StructOf(fields)
	class.Factory = structload.NewReflectFactory(class.Type)
	var bases, declared []*structload.ElementDescriptor
	for i, info := range slots {
		sf := class.Type.Field(i + 1)
		element := &structload.ElementDescriptor{
			Name:     info.name,
			NameHash: structload.NameHash(info.name),
			Offset:   sf.Offset,
			TypeID:   info.id,
			Type:     sf.Type,
		}
		if info.pointer {
			element.Flags |= structload.ElementPointer
		}
		if info.base {
			element.Flags |= structload.ElementBaseClass
			bases = append(bases, element)
			continue
		}
		declared = append(declared, element)
	}
	sort.SliceStable(bases, func(i, j int) bool { return bases[i].Offset < bases[j].Offset })
	class.Elements = append(bases, declared...)
	return nil
}

func isInteger(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
