package unmarshal

import (
	"unsafe"

	"github.com/viant/structload"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

// Load loads node into target of supplied type, isNewInstance marks a target created by the caller for this load
func Load(target unsafe.Pointer, typeID structload.TypeID, node *value.Node, isNewInstance bool, ctx *Context) result.Code {
	if !ctx.enter() {
		ctx.leave()
		return ctx.Reportf(result.NewWith(result.ReadField, result.Unsupported, result.Halted), "Exceeded max depth %v.", ctx.Settings.MaxDepth)
	}
	defer ctx.leave()

	if serializer, ok := ctx.serializerFor(typeID); ok {
		return loadWithSerializer(serializer, target, typeID, node, isNewInstance, ctx)
	}
	class := ctx.Registry.FindClassData(typeID)
	if class == nil {
		return ctx.Reportf(result.New(result.RetrieveInfo, result.Unknown), "Failed to retrieve serialization information for %v.", typeID)
	}
	if !class.GenericTypeID.IsNull() {
		if serializer, ok := ctx.serializerFor(class.GenericTypeID); ok {
			return loadWithSerializer(serializer, target, typeID, node, isNewInstance, ctx)
		}
	}
	if ctx.Registry.UnderlyingTypeID(typeID) != typeID {
		return LoadEnum(target, class, node, ctx)
	}
	if node.IsExplicitDefault() {
		return ctx.Report(result.New(result.ReadField, result.DefaultsUsed), "Value has an explicit default.")
	}
	if class.IsContainer() {
		return ctx.Reportf(result.New(result.ReadField, result.Unsupported), "No serializer registered for container %v.", class.Name)
	}
	if node.IsObject() {
		return LoadClass(target, class, node, ctx)
	}
	return ctx.Reportf(result.New(result.ReadField, result.Unsupported), "Reading into %v requires a JSON object, but had %v.", class.Name, node.Kind())
}

func loadWithSerializer(serializer Serializer, target unsafe.Pointer, typeID structload.TypeID, node *value.Node, isNewInstance bool, ctx *Context) result.Code {
	flags := serializer.Flags()
	if !node.IsExplicitDefault() || flags.has(ManualDefault) || (isNewInstance && flags.has(InitializeNewInstance)) {
		return serializer.Load(target, typeID, node, ctx)
	}
	return ctx.Report(result.New(result.ReadField, result.DefaultsUsed), "Value has an explicit default.")
}

// LoadClass maps object members onto class elements, derived elements shadow base elements with the same name
func LoadClass(target unsafe.Pointer, class *structload.ClassDescriptor, node *value.Node, ctx *Context) result.Code {
	ret := result.Code{Task: result.ReadField}
	// duplicate keys load last wins, an element counts once with its last result
	matched := map[*structload.ElementDescriptor]bool{}
	for _, member := range node.Members() {
		if member.Name == value.TypeField {
			continue
		}
		ctx.PushField(member.Name)
		code, element := loadMember(target, class, member, ctx)
		ctx.PopPath()
		ret = ret.Combine(code)
		if code.Processing == result.Halted {
			return ret
		}
		if element != nil {
			matched[element] = isLoaded(code)
		}
	}
	loaded := 0
	for _, ok := range matched {
		if ok {
			loaded++
		}
	}
	if declared := ctx.elementCount(class); loaded < declared {
		outcome := result.PartialDefaults
		if loaded == 0 {
			outcome = result.DefaultsUsed
		}
		ret = ret.Combine(result.New(result.ReadField, outcome))
	}
	return ret
}

// isLoaded returns true if a member result counts towards loaded elements
func isLoaded(code result.Code) bool {
	return code.Processing == result.Completed && code.Outcome != result.DefaultsUsed && code.Outcome != result.Skipped
}

func loadMember(target unsafe.Pointer, class *structload.ClassDescriptor, member value.Member, ctx *Context) (result.Code, *structload.ElementDescriptor) {
	element, holder, owner, ok := findElement(ctx.Registry, class, target, structload.NameHash(member.Name))
	if !ok {
		if ctx.Settings.UnknownFieldPolicy == ErrorOnUnknown {
			return ctx.Reportf(result.NewWith(result.ReadField, result.Unsupported, result.Halted), "Unknown field %v for %v.", member.Name, class.Name), nil
		}
		return ctx.Report(result.New(result.ReadField, result.Skipped), "Skipping field as there's no matching variable in the target."), nil
	}
	code := loadElement(element, owner, member.Value, ctx)
	if holder.Marker != nil && isLoaded(code) {
		holder.Marker.Set(owner, element)
	}
	return code, element
}

func loadElement(element *structload.ElementDescriptor, owner unsafe.Pointer, node *value.Node, ctx *Context) result.Code {
	address := element.Pointer(owner)
	if element.IsBaseClass() && node.IsObject() && !node.IsExplicitDefault() {
		if base := ctx.Registry.FindClassData(element.TypeID); base != nil {
			if _, ok := ctx.serializerFor(element.TypeID); !ok {
				return LoadClass(address, base, node, ctx)
			}
		}
	}
	return LoadWithClassElement(address, element, node, ctx)
}

// findElement searches elements in reverse declaration order, an element matching by its own name wins before its base class elements are searched.
// It returns the element with the class declaring it and that class instance address.
func findElement(registry TypeRegistry, class *structload.ClassDescriptor, target unsafe.Pointer, hash uint64) (*structload.ElementDescriptor, *structload.ClassDescriptor, unsafe.Pointer, bool) {
	for i := len(class.Elements) - 1; i >= 0; i-- {
		element := class.Elements[i]
		if element.NameHash == hash {
			return element, class, target, true
		}
		if !element.IsBaseClass() {
			continue
		}
		base := registry.FindClassData(element.TypeID)
		if base == nil {
			continue
		}
		if found, holder, owner, ok := findElement(registry, base, element.Pointer(target), hash); ok {
			return found, holder, owner, true
		}
	}
	return nil, nil, nil, false
}

// LoadWithClassElement loads element, pointer and interface elements go through LoadToPointer
func LoadWithClassElement(target unsafe.Pointer, element *structload.ElementDescriptor, node *value.Node, ctx *Context) result.Code {
	if element.IsPointer() {
		return LoadToPointer(target, element.TypeID, node, ctx)
	}
	return Load(target, element.TypeID, node, false, ctx)
}

func (c *Context) serializerFor(id structload.TypeID) (Serializer, bool) {
	if c.Serializers == nil {
		return nil, false
	}
	return c.Serializers.SerializerFor(id)
}
