package structload

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	"github.com/viant/xunsafe"
)

type (
	segment struct {
		name    string
		index   int
		isIndex bool
	}

	//Selector represents element path over registered classes, i.e. shapes[1].r, map entries are selected by key
	Selector struct {
		registry *Registry
		expr     string
		segments []segment
	}

	cursor struct {
		ptr   unsafe.Pointer
		rType reflect.Type
	}
)

// NewSelector parses path expression in the form used by load diagnostics
func (r *Registry) NewSelector(expr string) (*Selector, error) {
	segments, err := parseSelector(expr)
	if err != nil {
		return nil, err
	}
	return &Selector{registry: r, expr: expr, segments: segments}, nil
}

// Path returns selector expression
func (s *Selector) Path() string {
	return s.expr
}

// Value returns selected value, target has to be a non nil pointer to a registered type
func (s *Selector) Value(target interface{}) (interface{}, error) {
	rValue := reflect.ValueOf(target)
	if rValue.Kind() != reflect.Ptr || rValue.IsNil() {
		return nil, fmt.Errorf("invalid target: %T, expected non nil pointer", target)
	}
	at := cursor{ptr: rValue.UnsafePointer(), rType: rValue.Type().Elem()}
	for i, seg := range s.segments {
		var ok bool
		if at, ok = at.deref(); !ok {
			return nil, nil
		}
		next, err := s.step(at, seg)
		if err != nil {
			return nil, fmt.Errorf("failed to select %v at %v: %w", s.expr, s.prefix(i), err)
		}
		at = next
	}
	return reflect.NewAt(at.rType, at.ptr).Elem().Interface(), nil
}

func (s *Selector) prefix(i int) string {
	builder := strings.Builder{}
	for j, seg := range s.segments[:i+1] {
		if seg.isIndex {
			builder.WriteString("[" + strconv.Itoa(seg.index) + "]")
			continue
		}
		if j > 0 {
			builder.WriteByte('.')
		}
		builder.WriteString(seg.name)
	}
	return builder.String()
}

func (s *Selector) step(at cursor, seg segment) (cursor, error) {
	switch at.rType.Kind() {
	case reflect.Slice:
		if !seg.isIndex {
			return at, fmt.Errorf("expected index for %v", at.rType.String())
		}
		xSlice := xunsafe.NewSlice(at.rType)
		if length := xSlice.Len(at.ptr); seg.index < 0 || seg.index >= length {
			return at, fmt.Errorf("index out of range: %v, len: %v", seg.index, length)
		}
		return cursor{ptr: xSlice.PointerAt(at.ptr, uintptr(seg.index)), rType: at.rType.Elem()}, nil
	case reflect.Array:
		if !seg.isIndex {
			return at, fmt.Errorf("expected index for %v", at.rType.String())
		}
		if seg.index < 0 || seg.index >= at.rType.Len() {
			return at, fmt.Errorf("index out of range: %v, len: %v", seg.index, at.rType.Len())
		}
		return cursor{ptr: unsafe.Add(at.ptr, uintptr(seg.index)*at.rType.Elem().Size()), rType: at.rType.Elem()}, nil
	case reflect.Map:
		if seg.isIndex {
			return at, fmt.Errorf("expected key for %v", at.rType.String())
		}
		entry := reflect.NewAt(at.rType, at.ptr).Elem().MapIndex(reflect.ValueOf(seg.name).Convert(at.rType.Key()))
		if !entry.IsValid() {
			return at, fmt.Errorf("missing key: %v", seg.name)
		}
		holder := reflect.New(at.rType.Elem())
		holder.Elem().Set(entry)
		return cursor{ptr: holder.UnsafePointer(), rType: at.rType.Elem()}, nil
	case reflect.Struct:
		if seg.isIndex {
			return at, fmt.Errorf("unexpected index for %v", at.rType.String())
		}
		class := s.registry.ClassOf(at.rType)
		if class == nil {
			return at, fmt.Errorf("unregistered type: %v", at.rType.String())
		}
		element, owner, ok := s.registry.lookupElement(class, at.ptr, NameHash(seg.name))
		if !ok {
			return at, fmt.Errorf("unknown element: %v", seg.name)
		}
		return cursor{ptr: element.Pointer(owner), rType: element.Type}, nil
	}
	return at, fmt.Errorf("can not select %v from %v", seg.name, at.rType.String())
}

// deref follows pointer and interface slots, it returns false for nil slots
func (c cursor) deref() (cursor, bool) {
	for {
		switch c.rType.Kind() {
		case reflect.Ptr:
			ptr := xunsafe.DerefPointer(c.ptr)
			if ptr == nil {
				return c, false
			}
			c = cursor{ptr: ptr, rType: c.rType.Elem()}
		case reflect.Interface:
			held := reflect.NewAt(c.rType, c.ptr).Elem()
			if held.IsNil() {
				return c, false
			}
			dynamic := held.Elem()
			if dynamic.Kind() == reflect.Ptr {
				if dynamic.IsNil() {
					return c, false
				}
				c = cursor{ptr: dynamic.UnsafePointer(), rType: dynamic.Type().Elem()}
				continue
			}
			holder := reflect.New(dynamic.Type())
			holder.Elem().Set(dynamic)
			c = cursor{ptr: holder.UnsafePointer(), rType: dynamic.Type()}
		default:
			return c, true
		}
	}
}

// lookupElement finds element by name hash, derived elements shadow base class elements
func (r *Registry) lookupElement(class *ClassDescriptor, target unsafe.Pointer, hash uint64) (*ElementDescriptor, unsafe.Pointer, bool) {
	for i := len(class.Elements) - 1; i >= 0; i-- {
		element := class.Elements[i]
		if element.NameHash == hash {
			return element, target, true
		}
		if !element.IsBaseClass() {
			continue
		}
		base := r.FindClassData(element.TypeID)
		if base == nil {
			continue
		}
		if found, owner, ok := r.lookupElement(base, element.Pointer(target), hash); ok {
			return found, owner, true
		}
	}
	return nil, nil, false
}

func parseSelector(expr string) ([]segment, error) {
	var ret []segment
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty selector")
	}
	for i := 0; i < len(expr); {
		switch expr[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(expr[i:], ']')
			if end == -1 {
				return nil, fmt.Errorf("invalid selector: %v, missing ]", expr)
			}
			index, err := strconv.Atoi(expr[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("invalid selector: %v, %w", expr, err)
			}
			ret = append(ret, segment{index: index, isIndex: true})
			i += end + 1
		default:
			end := strings.IndexAny(expr[i:], ".[")
			if end == -1 {
				end = len(expr) - i
			}
			ret = append(ret, segment{name: expr[i : i+end]})
			i += end
		}
	}
	return ret, nil
}
