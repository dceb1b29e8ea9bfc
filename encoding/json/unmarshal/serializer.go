package unmarshal

import (
	"sync"
	"unsafe"

	"github.com/viant/structload"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

// OperationFlags describes serializer capabilities
type OperationFlags uint8

const (
	// ManualDefault serializer handles explicit default value itself
	ManualDefault OperationFlags = 1 << iota
	// InitializeNewInstance serializer initializes freshly created instances from explicit default
	InitializeNewInstance
)

type (
	// Serializer loads a value node into a target bypassing class reflection
	Serializer interface {
		Load(target unsafe.Pointer, typeID structload.TypeID, node *value.Node, ctx *Context) result.Code
		Flags() OperationFlags
	}

	// SerializerRegistry finds custom serializer for a type
	SerializerRegistry interface {
		SerializerFor(id structload.TypeID) (Serializer, bool)
	}

	// Serializers represents custom serializers registry, safe for concurrent reads
	Serializers struct {
		mux      sync.RWMutex
		registry map[structload.TypeID]Serializer
	}
)

// SerializerFor returns serializer registered for supplied type id
func (s *Serializers) SerializerFor(id structload.TypeID) (Serializer, bool) {
	if s == nil {
		return nil, false
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret, ok := s.registry[id]
	return ret, ok
}

// Register registers serializer for type ids
func (s *Serializers) Register(serializer Serializer, ids ...structload.TypeID) {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, id := range ids {
		s.registry[id] = serializer
	}
}

// NewSerializers creates empty serializer registry
func NewSerializers() *Serializers {
	return &Serializers{registry: map[structload.TypeID]Serializer{}}
}

func (f OperationFlags) has(flag OperationFlags) bool {
	return f&flag != 0
}
