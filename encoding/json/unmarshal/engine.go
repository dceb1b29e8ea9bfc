package unmarshal

import (
	"fmt"
	"reflect"
	"time"
	"unsafe"

	"github.com/viant/structload"
	"github.com/viant/structload/internal/lru"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

type UnknownFieldPolicy int

const (
	IgnoreUnknown UnknownFieldPolicy = iota
	ErrorOnUnknown
)

type NumberPolicy int

const (
	CoerceNumbers NumberPolicy = iota
	ExactNumbers
)

type NullPolicy int

const (
	CompatNulls NullPolicy = iota
	StrictNulls
)

// Settings controls load policies
type Settings struct {
	UnknownFieldPolicy UnknownFieldPolicy
	NumberPolicy       NumberPolicy
	NullPolicy         NullPolicy
	TimeLayout         string
	MaxDepth           int
}

// Engine loads value trees into registered types, it is safe for concurrent use when registries are not modified
type Engine struct {
	Registry    *structload.Registry
	Serializers SerializerRegistry
	Settings    Settings
	counts      *lru.Cache[structload.TypeID, int]
}

func New(registry *structload.Registry, serializers SerializerRegistry, settings Settings) *Engine {
	if settings.TimeLayout == "" {
		settings.TimeLayout = time.RFC3339
	}
	return &Engine{
		Registry:    registry,
		Serializers: serializers,
		Settings:    settings,
		counts:      lru.New[structload.TypeID, int](1024),
	}
}

// NewContext creates a per call context
func (e *Engine) NewContext(reporter Reporter) *Context {
	ctx := NewContext(e.Registry, e.Serializers, reporter, e.Settings)
	ctx.counts = e.counts
	return ctx
}

// Load loads node into target pointer, target has to be a non nil pointer to a registered type
func (e *Engine) Load(target interface{}, node *value.Node, reporter Reporter) (result.Code, error) {
	ptr, rType, err := targetOf(target)
	if err != nil {
		return result.Code{}, err
	}
	if rType.Kind() == reflect.Ptr {
		return e.LoadPointer(target, node, reporter)
	}
	typeID, err := e.typeIDOf(rType)
	if err != nil {
		return result.Code{}, err
	}
	ctx := e.NewContext(reporter)
	if class := e.Registry.FindClassData(typeID); class != nil && class.IsInterface() {
		return LoadToPointer(ptr, typeID, node, ctx), nil
	}
	return Load(ptr, typeID, node, false, ctx), nil
}

// LoadPointer loads node into a *T or interface slot pointed by target, i.e. **T or *Shape
func (e *Engine) LoadPointer(target interface{}, node *value.Node, reporter Reporter) (result.Code, error) {
	ptr, rType, err := targetOf(target)
	if err != nil {
		return result.Code{}, err
	}
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	} else if rType.Kind() != reflect.Interface {
		return result.Code{}, fmt.Errorf("invalid target: %T, expected pointer to pointer or interface", target)
	}
	typeID, err := e.typeIDOf(rType)
	if err != nil {
		return result.Code{}, err
	}
	return LoadToPointer(ptr, typeID, node, e.NewContext(reporter)), nil
}

func (e *Engine) typeIDOf(rType reflect.Type) (structload.TypeID, error) {
	if id, ok := e.Registry.TypeIDOf(rType); ok {
		return id, nil
	}
	return structload.NullTypeID, fmt.Errorf("unregistered type: %v", rType.String())
}

func targetOf(target interface{}) (unsafe.Pointer, reflect.Type, error) {
	if target == nil {
		return nil, nil, fmt.Errorf("nil destination")
	}
	rValue := reflect.ValueOf(target)
	if rValue.Kind() != reflect.Ptr {
		return nil, nil, fmt.Errorf("invalid destination: %T, expected pointer", target)
	}
	if rValue.IsNil() {
		return nil, nil, fmt.Errorf("nil destination: %T", target)
	}
	return rValue.UnsafePointer(), rValue.Type().Elem(), nil
}
