package serializer

import (
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/unmarshal"
)

var (
	intKinds   = []reflect.Type{reflect.TypeOf(int(0)), reflect.TypeOf(int8(0)), reflect.TypeOf(int16(0)), reflect.TypeOf(int32(0)), reflect.TypeOf(int64(0))}
	uintKinds  = []reflect.Type{reflect.TypeOf(uint(0)), reflect.TypeOf(uint8(0)), reflect.TypeOf(uint16(0)), reflect.TypeOf(uint32(0)), reflect.TypeOf(uint64(0))}
	floatKinds = []reflect.Type{reflect.TypeOf(float32(0)), reflect.TypeOf(float64(0))}
)

// New creates serializers with all built-in serializers
func New(registry *structload.Registry) (*unmarshal.Serializers, error) {
	ret := unmarshal.NewSerializers()
	if err := Register(ret, registry); err != nil {
		return nil, err
	}
	return ret, nil
}

// Register registers built-in serializers, well known struct types are registered with the type registry
func Register(serializers *unmarshal.Serializers, registry *structload.Registry) error {
	serializers.Register(&Bool{}, structload.TypeIDFor(reflect.TypeOf(false)))
	serializers.Register(&String{}, structload.TypeIDFor(reflect.TypeOf("")))
	for _, rType := range intKinds {
		serializers.Register(&Int{kind: rType.Kind()}, structload.TypeIDFor(rType))
	}
	for _, rType := range uintKinds {
		serializers.Register(&Uint{kind: rType.Kind()}, structload.TypeIDFor(rType))
	}
	for _, rType := range floatKinds {
		serializers.Register(&Float{kind: rType.Kind()}, structload.TypeIDFor(rType))
	}
	serializers.Register(&Slice{}, structload.SliceTypeID)
	serializers.Register(&Array{}, structload.ArrayTypeID)
	serializers.Register(&Map{}, structload.MapTypeID)

	typed := []struct {
		rType      reflect.Type
		serializer unmarshal.Serializer
	}{
		{rType: reflect.TypeOf(time.Time{}), serializer: &Time{}},
		{rType: reflect.TypeOf(uuid.UUID{}), serializer: &UUID{}},
		{rType: reflect.TypeOf(structload.TypeID{}), serializer: &TypeID{}},
		{rType: reflect.TypeOf(decimal.Decimal{}), serializer: &Decimal{}},
	}
	for _, item := range typed {
		class, err := registry.Register(item.rType)
		if err != nil {
			return err
		}
		serializers.Register(item.serializer, class.TypeID)
	}
	return nil
}
