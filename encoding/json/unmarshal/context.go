package unmarshal

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/viant/structload"
	"github.com/viant/structload/internal/lru"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

type (
	// TypeRegistry provides class metadata consumed by the loader
	TypeRegistry interface {
		FindClassData(id structload.TypeID) *structload.ClassDescriptor
		FindClassIDsByNameHash(hash uint64) []structload.TypeID
		UnderlyingTypeID(id structload.TypeID) structload.TypeID
		CanDowncast(from, to structload.TypeID, fromRtti, toRtti structload.RttiHelper) bool
	}

	// Reporter receives every reported outcome, returned code replaces the reported one
	Reporter interface {
		Report(message string, code result.Code, path string) result.Code
	}

	// ReporterFunc adapts a function to Reporter
	ReporterFunc func(message string, code result.Code, path string) result.Code

	// ContinuationFlags controls Context.Continue
	ContinuationFlags uint8

	// Context carries per call load state, it is not safe for concurrent use
	Context struct {
		Registry    TypeRegistry
		Serializers SerializerRegistry
		Reporter    Reporter
		Settings    Settings
		path        pathState
		depth       int
		counts      *lru.Cache[structload.TypeID, int]
	}

	segmentKind int

	pathSegment struct {
		field string
		index int
		kind  segmentKind
	}

	pathState struct {
		segments []pathSegment
	}
)

const (
	// LoadAsNewInstance treats target as freshly created instance
	LoadAsNewInstance ContinuationFlags = 1 << iota
	// ResolvePointer treats target as a pointer or interface slot
	ResolvePointer
)

const (
	segmentField segmentKind = iota
	segmentIndex
)

func (f ReporterFunc) Report(message string, code result.Code, path string) result.Code {
	return f(message, code, path)
}

// NewContext creates load context
func NewContext(registry TypeRegistry, serializers SerializerRegistry, reporter Reporter, settings Settings) *Context {
	return &Context{Registry: registry, Serializers: serializers, Reporter: reporter, Settings: settings}
}

// Report reports code with message annotated with current path
func (c *Context) Report(code result.Code, message string) result.Code {
	if c.Reporter == nil {
		return code
	}
	return c.Reporter.Report(message, code, c.Path())
}

// Reportf reports code with formatted message
func (c *Context) Reportf(code result.Code, format string, args ...interface{}) result.Code {
	if c.Reporter == nil {
		return code
	}
	return c.Reporter.Report(fmt.Sprintf(format, args...), code, c.Path())
}

func (c *Context) PushField(name string) { c.path.pushField(name) }
func (c *Context) PushIndex(index int)   { c.path.pushIndex(index) }
func (c *Context) PopPath()              { c.path.pop() }

// Path returns current path, i.e. scene.nodes[2].name
func (c *Context) Path() string {
	return c.path.String()
}

// Continue loads node into target, it lets custom serializers recurse back into the loader
func (c *Context) Continue(target unsafe.Pointer, typeID structload.TypeID, node *value.Node, flags ContinuationFlags) result.Code {
	if flags&ResolvePointer != 0 {
		return LoadToPointer(target, typeID, node, c)
	}
	return Load(target, typeID, node, flags&LoadAsNewInstance != 0, c)
}

func (c *Context) enter() bool {
	c.depth++
	return c.Settings.MaxDepth <= 0 || c.depth <= c.Settings.MaxDepth
}

func (c *Context) leave() {
	c.depth--
}

func (c *Context) elementCount(class *structload.ClassDescriptor) int {
	if c.counts != nil {
		if count, ok := c.counts.Get(class.TypeID); ok {
			return count
		}
	}
	count := 0
	for _, element := range class.Elements {
		if !element.IsBaseClass() {
			count++
			continue
		}
		if base := c.Registry.FindClassData(element.TypeID); base != nil {
			count += c.elementCount(base)
		}
	}
	if c.counts != nil {
		c.counts.Set(class.TypeID, count)
	}
	return count
}

func (p *pathState) pushField(name string) {
	p.segments = append(p.segments, pathSegment{kind: segmentField, field: name})
}

func (p *pathState) pushIndex(index int) {
	p.segments = append(p.segments, pathSegment{kind: segmentIndex, index: index})
}

func (p *pathState) pop() {
	if len(p.segments) == 0 {
		return
	}
	p.segments = p.segments[:len(p.segments)-1]
}

func (p *pathState) String() string {
	if len(p.segments) == 0 {
		return ""
	}
	builder := strings.Builder{}
	for i, segment := range p.segments {
		switch segment.kind {
		case segmentIndex:
			builder.WriteByte('[')
			builder.WriteString(strconv.Itoa(segment.index))
			builder.WriteByte(']')
		default:
			if i > 0 {
				builder.WriteByte('.')
			}
			builder.WriteString(segment.field)
		}
	}
	return builder.String()
}
