package structload

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"github.com/viant/xunsafe"
)

const (
	//SetMarkerTag marks a struct field holding element presence flags
	SetMarkerTag = "setMarker"

	presenceMarkerTag = "presenceMarker"
)

// Marker flags elements loaded into an instance on a presence holder, i.e. Has *EntityHas `setMarker:"true"`
type Marker struct {
	holder     *xunsafe.Field
	holderType reflect.Type
	fields     map[*ElementDescriptor]*xunsafe.Field
}

// IsSetMarker returns true for presence holder field tag
func IsSetMarker(tag reflect.StructTag) bool {
	if value, ok := tag.Lookup(SetMarkerTag); ok {
		return strings.TrimSpace(value) != "false"
	}
	_, ok := tag.Lookup(presenceMarkerTag)
	return ok
}

func newMarker(holder reflect.StructField, elements map[string]*ElementDescriptor) (*Marker, error) {
	holderType := holder.Type
	if holderType.Kind() == reflect.Ptr {
		holderType = holderType.Elem()
	}
	if holderType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("invalid marker %v: expected struct, but had %v", holder.Name, holder.Type.String())
	}
	ret := &Marker{holder: xunsafe.NewField(holder), holderType: holderType, fields: map[*ElementDescriptor]*xunsafe.Field{}}
	for i := 0; i < holderType.NumField(); i++ {
		markerField := holderType.Field(i)
		element, ok := elements[markerField.Name]
		if !ok {
			return nil, fmt.Errorf("marker field: '%v' does not have corresponding struct field", markerField.Name)
		}
		if markerField.Type.Kind() != reflect.Bool {
			return nil, fmt.Errorf("marker field: '%v' has to be bool", markerField.Name)
		}
		ret.fields[element] = xunsafe.NewField(markerField)
	}
	return ret, nil
}

// Set flags element as loaded, nil pointer holder is allocated
func (m *Marker) Set(owner unsafe.Pointer, element *ElementDescriptor) {
	field, ok := m.fields[element]
	if !ok {
		return
	}
	field.SetBool(m.ensureHolder(owner), true)
}

// IsSet returns true if element was flagged, all elements are assumed set when holder is nil
func (m *Marker) IsSet(owner unsafe.Pointer, element *ElementDescriptor) bool {
	if m.holder.Type.Kind() == reflect.Ptr && m.holder.IsNil(owner) {
		return true
	}
	field, ok := m.fields[element]
	if !ok {
		return false
	}
	return field.Bool(m.holderPointer(owner))
}

func (m *Marker) ensureHolder(owner unsafe.Pointer) unsafe.Pointer {
	if m.holder.Type.Kind() == reflect.Ptr && m.holder.IsNil(owner) {
		reflect.NewAt(m.holder.Type, m.holder.Pointer(owner)).Elem().Set(reflect.New(m.holderType))
	}
	return m.holderPointer(owner)
}

func (m *Marker) holderPointer(owner unsafe.Pointer) unsafe.Pointer {
	if m.holder.Type.Kind() == reflect.Ptr {
		return m.holder.ValuePointer(owner)
	}
	return m.holder.Pointer(owner)
}
