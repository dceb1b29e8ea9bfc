package value

import (
	"fmt"
	"strconv"
)

// TypeField is the reserved member carrying an explicit type hint
const TypeField = "$type"

// Kind represents value node kind
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = []string{"null", "bool", "number", "string", "array", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

type (
	// Member represents named object member, duplicated names are preserved in source order
	Member struct {
		Name  string
		Value *Node
	}

	// Node represents an immutable parsed JSON value
	Node struct {
		kind    Kind
		text    string
		boolean bool
		items   []*Node
		members []Member
	}
)

var nullNode = &Node{kind: KindNull}

func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

func (n *Node) IsNull() bool   { return n.Kind() == KindNull }
func (n *Node) IsObject() bool { return n.Kind() == KindObject }
func (n *Node) IsArray() bool  { return n.Kind() == KindArray }
func (n *Node) IsString() bool { return n.Kind() == KindString }
func (n *Node) IsNumber() bool { return n.Kind() == KindNumber }
func (n *Node) IsBool() bool   { return n.Kind() == KindBool }

// IsExplicitDefault returns true for an object without members, it marks value intentionally omitted
func (n *Node) IsExplicitDefault() bool {
	return n.Kind() == KindObject && len(n.members) == 0
}

// Members returns object members in source order
func (n *Node) Members() []Member {
	if n.Kind() != KindObject {
		return nil
	}
	return n.members
}

// Member returns the last member with supplied name, duplicate keys resolve the way members load
func (n *Node) Member(name string) (*Node, bool) {
	members := n.Members()
	for i := len(members) - 1; i >= 0; i-- {
		if members[i].Name == name {
			return members[i].Value, true
		}
	}
	return nil, false
}

// Items returns array items
func (n *Node) Items() []*Node {
	if n.Kind() != KindArray {
		return nil
	}
	return n.items
}

// Len returns number of array items or object members
func (n *Node) Len() int {
	switch n.Kind() {
	case KindArray:
		return len(n.items)
	case KindObject:
		return len(n.members)
	}
	return 0
}

// Text returns string value or number literal
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.text
}

func (n *Node) Bool() bool {
	return n != nil && n.boolean
}

func (n *Node) Uint64() (uint64, error) {
	if n.Kind() != KindNumber {
		return 0, fmt.Errorf("expected number, but had: %v", n.Kind())
	}
	return strconv.ParseUint(n.text, 10, 64)
}

func (n *Node) Int64() (int64, error) {
	if n.Kind() != KindNumber {
		return 0, fmt.Errorf("expected number, but had: %v", n.Kind())
	}
	return strconv.ParseInt(n.text, 10, 64)
}

func (n *Node) Float64() (float64, error) {
	if n.Kind() != KindNumber {
		return 0, fmt.Errorf("expected number, but had: %v", n.Kind())
	}
	return strconv.ParseFloat(n.text, 64)
}

// Object creates object node
func Object(members ...Member) *Node {
	return &Node{kind: KindObject, members: members}
}

// Field creates object member
func Field(name string, value *Node) Member {
	return Member{Name: name, Value: value}
}

// Array creates array node
func Array(items ...*Node) *Node {
	if items == nil {
		items = []*Node{}
	}
	return &Node{kind: KindArray, items: items}
}

// String creates string node
func String(text string) *Node {
	return &Node{kind: KindString, text: text}
}

// Number creates number node from a literal
func Number(literal string) *Node {
	return &Node{kind: KindNumber, text: literal}
}

func Int(v int64) *Node {
	return Number(strconv.FormatInt(v, 10))
}

func Uint(v uint64) *Node {
	return Number(strconv.FormatUint(v, 10))
}

func Float(v float64) *Node {
	return Number(strconv.FormatFloat(v, 'g', -1, 64))
}

func Bool(v bool) *Node {
	return &Node{kind: KindBool, boolean: v}
}

func Null() *Node {
	return nullNode
}
