package unmarshal_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/serializer"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
)

type (
	Base struct {
		A int `json:"a"`
	}

	Derived struct {
		Base
		A int `json:"a"`
		B int `json:"b"`
	}

	Shape interface {
		Area() float64
	}

	Circle struct {
		R float64 `json:"r"`
	}

	Dot struct {
		N int `json:"n"`
	}

	BaseHolder struct {
		Base *Base `json:"base"`
	}

	Square struct {
		X    int `json:"x"`
		Side float64
	}

	Holder struct {
		Shape Shape   `json:"shape"`
		Item  *Widget `json:"item"`
		Name  string  `json:"name"`
	}

	Widget struct {
		Count int      `json:"count"`
		Label string   `json:"label"`
		Tags  []string `json:"tags"`
	}

	Scene struct {
		Shapes []Shape          `json:"shapes"`
		Byname map[string]*Base `json:"byName"`
		Levels [2]Level         `json:"levels"`
		Flags  Flags            `json:"flags"`
	}

	Flags uint32

	Tiny int8

	Level int16
)

var (
	widgetDestroyed  int
	circleDestroyed  int
	squareDestroyed  int
	factoryCreated   int
	factoryDestroyed int
)

func resetDestroyed() {
	widgetDestroyed, circleDestroyed, squareDestroyed = 0, 0, 0
	factoryCreated, factoryDestroyed = 0, 0
}

// countingWidgetFactory counts creates and destroys instead of calling Widget.Destroy
func countingWidgetFactory() structload.Factory {
	return structload.NewFactory(func() unsafe.Pointer {
		factoryCreated++
		return unsafe.Pointer(&Widget{})
	}, func(unsafe.Pointer) {
		factoryDestroyed++
	})
}

func (d Dot) Area() float64 { return 0 }
func (c *Circle) Area() float64 { return c.R * c.R * 3.14 }
func (s *Square) Area() float64 { return s.Side * s.Side }

func (c *Circle) Destroy() { circleDestroyed++ }
func (s *Square) Destroy() { squareDestroyed++ }

func (w *Widget) Destroy() { widgetDestroyed++ }

type fixture struct {
	registry    *structload.Registry
	serializers *unmarshal.Serializers
	collector   *collector
}

type collector struct {
	messages []string
	codes    []result.Code
}

func (c *collector) Report(message string, code result.Code, path string) result.Code {
	c.messages = append(c.messages, path+": "+message)
	c.codes = append(c.codes, code)
	return code
}

func newFixture(t *testing.T) *fixture {
	registry := structload.NewRegistry()
	serializers, err := serializer.New(registry)
	require.Nil(t, err)
	for _, rType := range []reflect.Type{reflect.TypeOf(Derived{}), reflect.TypeOf(Holder{}), reflect.TypeOf(Scene{}), reflect.TypeOf(Circle{}), reflect.TypeOf(Square{}), reflect.TypeOf(BaseHolder{})} {
		_, err = registry.Register(rType)
		require.Nil(t, err)
	}
	_, err = registry.RegisterEnum(reflect.TypeOf(Flags(0)), []structload.EnumConstant{{Name: "A", Value: 1}, {Name: "B", Value: 2}, {Name: "C", Value: 4}})
	require.Nil(t, err)
	_, err = registry.RegisterEnum(reflect.TypeOf(Tiny(0)), []structload.EnumConstant{{Name: "One", Value: 1}})
	require.Nil(t, err)
	_, err = registry.RegisterEnum(reflect.TypeOf(Level(0)), []structload.EnumConstant{{Name: "Low", Value: uint64(0xFFFF)}, {Name: "High", Value: 10}})
	require.Nil(t, err)
	return &fixture{registry: registry, serializers: serializers, collector: &collector{}}
}

func (f *fixture) context(settings unmarshal.Settings) *unmarshal.Context {
	return unmarshal.NewContext(f.registry, f.serializers, f.collector, settings)
}

func (f *fixture) class(t *testing.T, rType reflect.Type) *structload.ClassDescriptor {
	class := f.registry.ClassOf(rType)
	require.NotNil(t, class, rType.String())
	return class
}

func (f *fixture) typeID(t *testing.T, rType reflect.Type) structload.TypeID {
	id, ok := f.registry.TypeIDOf(rType)
	require.True(t, ok, rType.String())
	return id
}
