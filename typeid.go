package structload

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// TypeID identifies a reflected type
type TypeID uuid.UUID

// NullTypeID represents an unset type id
var NullTypeID TypeID

// typeNamespace seeds deterministic ids for types registered without an explicit id
var typeNamespace = uuid.MustParse("8b0f6a4e-3c1d-4f59-9a53-4a4f0f9e5c21")

// String returns braced upper-case representation, i.e. {2F8F49D7-0AEC-4F73-9DC9-0B883B86ACDB}
func (t TypeID) String() string {
	return "{" + strings.ToUpper(uuid.UUID(t).String()) + "}"
}

// IsNull returns true if type id is not set
func (t TypeID) IsNull() bool {
	return t == NullTypeID
}

// ParseTypeID parses a uuid literal, braced or plain
func ParseTypeID(literal string) (TypeID, error) {
	literal = strings.TrimSpace(literal)
	if len(literal) == 38 && (literal[0] != '{' || literal[37] != '}') {
		return NullTypeID, fmt.Errorf("invalid type id: %v", literal)
	}
	id, err := uuid.Parse(literal)
	if err != nil {
		return NullTypeID, fmt.Errorf("invalid type id: %v, %w", literal, err)
	}
	return TypeID(id), nil
}

// MustParseTypeID parses type id or panics
func MustParseTypeID(literal string) TypeID {
	ret, err := ParseTypeID(literal)
	if err != nil {
		panic(err)
	}
	return ret
}

// DeriveTypeID returns a stable type id derived from a qualified name
func DeriveTypeID(qualifiedName string) TypeID {
	return TypeID(uuid.NewSHA1(typeNamespace, []byte(qualifiedName)))
}

// TypeIDFor returns the id a type gets when registered without WithTypeID
func TypeIDFor(rType reflect.Type) TypeID {
	return DeriveTypeID(qualifiedName(rType))
}

func qualifiedName(rType reflect.Type) string {
	if rType.Name() != "" && rType.PkgPath() != "" {
		return rType.PkgPath() + "." + rType.Name()
	}
	return rType.String()
}
