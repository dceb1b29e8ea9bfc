package json

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/serializer"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/internal/lru"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

type engineKey struct {
	registry    *structload.Registry
	serializers *unmarshal.Serializers
	settings    unmarshal.Settings
}

var defaultRegistry = structload.NewRegistry()

var serializersByRegistry sync.Map // *structload.Registry -> *unmarshal.Serializers

var engines = lru.New[engineKey, *unmarshal.Engine](64)

// Load parses data and loads it into target, target has to be a non nil pointer.
// It returns *LoadError when processing was altered or halted.
func Load(target interface{}, data []byte, opts ...Option) (result.Code, error) {
	node, err := value.Parse(data)
	if err != nil {
		return result.Code{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return LoadValue(target, node, opts...)
}

// LoadValue loads parsed value tree into target
func LoadValue(target interface{}, node *value.Node, opts ...Option) (result.Code, error) {
	cfg := resolveOptions(opts)
	rType, err := targetType(target)
	if err != nil {
		return result.Code{}, err
	}
	// target type is registered before loading starts, the engine itself only reads the registry
	registry := cfg.Registry
	if registry == nil {
		registry = defaultRegistry
	}
	if _, err = registry.Register(rType); err != nil {
		return result.Code{}, fmt.Errorf("failed to register %v: %w", rType.String(), err)
	}
	engine, err := engineFor(&cfg)
	if err != nil {
		return result.Code{}, err
	}
	collector := &Collector{}
	code, err := engine.Load(target, node, cfg.reporter(collector))
	if err != nil {
		return code, err
	}
	if code.Processing != result.Completed {
		return code, &LoadError{Code: code, Diagnostics: collector.Diagnostics}
	}
	return code, nil
}

// Unmarshal loads data into dest, partial defaults are not reported as error
func Unmarshal(data []byte, dest interface{}, opts ...Option) error {
	_, err := Load(dest, data, opts...)
	return err
}

func targetType(target interface{}) (reflect.Type, error) {
	if target == nil {
		return nil, fmt.Errorf("nil destination")
	}
	rType := reflect.TypeOf(target)
	if rType.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("invalid destination: %T, expected pointer", target)
	}
	rType = rType.Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType, nil
}

func engineFor(cfg *Options) (*unmarshal.Engine, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = defaultRegistry
	}
	serializers := cfg.Serializers
	if serializers == nil {
		var err error
		if serializers, err = serializersFor(registry); err != nil {
			return nil, err
		}
	}
	key := engineKey{registry: registry, serializers: serializers, settings: cfg.settings()}
	if engine, ok := engines.Get(key); ok {
		return engine, nil
	}
	engine := unmarshal.New(registry, serializers, key.settings)
	engines.Set(key, engine)
	return engine, nil
}

func serializersFor(registry *structload.Registry) (*unmarshal.Serializers, error) {
	if serializers, ok := serializersByRegistry.Load(registry); ok {
		return serializers.(*unmarshal.Serializers), nil
	}
	serializers, err := serializer.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register built-in serializers: %w", err)
	}
	actual, _ := serializersByRegistry.LoadOrStore(registry, serializers)
	return actual.(*unmarshal.Serializers), nil
}

func (o *Options) reporter(collector *Collector) unmarshal.Reporter {
	var ret reporters
	if o.Reporter != nil {
		ret = append(ret, o.Reporter)
	}
	if o.Logger != nil {
		ret = append(ret, NewLogReporter(*o.Logger))
	}
	return append(ret, collector)
}
