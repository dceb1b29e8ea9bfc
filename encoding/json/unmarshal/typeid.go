package unmarshal

import (
	"strings"

	"github.com/viant/structload"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

// Determination describes how a type id was resolved
type Determination int

const (
	ExplicitTypeID Determination = iota
	ImplicitTypeID
	FailedToDetermine
	FailedDueToMultipleTypeIds
)

// TypeIDResult represents type hint resolution
type TypeIDResult struct {
	TypeID        structload.TypeID
	Determination Determination
}

func (d Determination) String() string {
	switch d {
	case ExplicitTypeID:
		return "ExplicitTypeID"
	case ImplicitTypeID:
		return "ImplicitTypeID"
	case FailedToDetermine:
		return "FailedToDetermine"
	case FailedDueToMultipleTypeIds:
		return "FailedDueToMultipleTypeIds"
	}
	return "Unknown"
}

// ResolveTypeID resolves $type hint of an object node, nodes without hint resolve to the base type
func ResolveTypeID(node *value.Node, baseTypeID structload.TypeID, baseRtti structload.RttiHelper, ctx *Context) TypeIDResult {
	implicit := TypeIDResult{TypeID: baseTypeID, Determination: ImplicitTypeID}
	if !node.IsObject() {
		return implicit
	}
	hint, ok := node.Member(value.TypeField)
	if !ok {
		return implicit
	}
	if !hint.IsString() {
		ctx.Reportf(result.New(result.RetrieveInfo, result.Unsupported), "Type hint must be a string, but had %v.", hint.Kind())
		return TypeIDResult{Determination: FailedToDetermine}
	}
	text := strings.TrimSpace(hint.Text())
	if id, ok := parseTypeHint(text); ok {
		return TypeIDResult{TypeID: id, Determination: ExplicitTypeID}
	}
	candidates := ctx.Registry.FindClassIDsByNameHash(structload.NameHash(text))
	switch len(candidates) {
	case 0:
		ctx.Reportf(result.New(result.RetrieveInfo, result.Unknown), "Unable to find type named %q.", text)
		return TypeIDResult{Determination: FailedToDetermine}
	case 1:
		return TypeIDResult{TypeID: candidates[0], Determination: ExplicitTypeID}
	}
	if !baseTypeID.IsNull() {
		var matched []structload.TypeID
		for _, candidate := range candidates {
			if ctx.Registry.CanDowncast(candidate, baseTypeID, nil, baseRtti) {
				matched = append(matched, candidate)
			}
		}
		if len(matched) == 1 {
			return TypeIDResult{TypeID: matched[0], Determination: ExplicitTypeID}
		}
	}
	ctx.Reportf(result.New(result.RetrieveInfo, result.Unknown), "Type name %q matches %v types.", text, len(candidates))
	return TypeIDResult{Determination: FailedDueToMultipleTypeIds}
}

// parseTypeHint parses uuid literal, braced uuid may be followed by a type name, i.e. {2F8F49D7-0AEC-4F73-9DC9-0B883B86ACDB} Circle
func parseTypeHint(text string) (structload.TypeID, bool) {
	if strings.HasPrefix(text, "{") {
		end := strings.IndexByte(text, '}')
		if end == -1 {
			return structload.NullTypeID, false
		}
		text = text[:end+1]
	} else if len(text) != 36 {
		return structload.NullTypeID, false
	}
	id, err := structload.ParseTypeID(text)
	if err != nil {
		return structload.NullTypeID, false
	}
	return id, true
}
