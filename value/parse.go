package value

import (
	"bytes"
	"fmt"

	"github.com/francoispqt/gojay"
)

const maxParseDepth = 10000

type (
	objectDecoder struct {
		node  *Node
		depth int
	}

	arrayDecoder struct {
		node  *Node
		depth int
	}
)

// UnmarshalJSONObject implements gojay.UnmarshalerJSONObject
func (d *objectDecoder) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	child, err := decodeEmbedded(dec, d.depth)
	if err != nil {
		return fmt.Errorf("invalid member %q: %w", key, err)
	}
	d.node.members = append(d.node.members, Member{Name: key, Value: child})
	return nil
}

// NKeys returns 0 so that every key is visited
func (d *objectDecoder) NKeys() int {
	return 0
}

// UnmarshalJSONArray implements gojay.UnmarshalerJSONArray
func (d *arrayDecoder) UnmarshalJSONArray(dec *gojay.Decoder) error {
	child, err := decodeEmbedded(dec, d.depth)
	if err != nil {
		return fmt.Errorf("invalid item [%d]: %w", len(d.node.items), err)
	}
	d.node.items = append(d.node.items, child)
	return nil
}

func decodeEmbedded(dec *gojay.Decoder, depth int) (*Node, error) {
	var raw gojay.EmbeddedJSON
	if err := dec.EmbeddedJSON(&raw); err != nil {
		return nil, err
	}
	return parse(raw, depth+1)
}

// Parse parses JSON document into a value tree
func Parse(data []byte) (*Node, error) {
	return parse(data, 0)
}

// MustParse parses JSON document or panics
func MustParse(data string) *Node {
	ret, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return ret
}

func parse(data []byte, depth int) (*Node, error) {
	if depth > maxParseDepth {
		return nil, fmt.Errorf("exceeded max nesting depth: %v", maxParseDepth)
	}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil, fmt.Errorf("unexpected end of JSON input")
	}
	switch raw[0] {
	case '{':
		node := &Node{kind: KindObject}
		if err := gojay.UnmarshalJSONObject(raw, &objectDecoder{node: node, depth: depth}); err != nil {
			return nil, err
		}
		return node, nil
	case '[':
		node := &Node{kind: KindArray, items: []*Node{}}
		if err := gojay.UnmarshalJSONArray(raw, &arrayDecoder{node: node, depth: depth}); err != nil {
			return nil, err
		}
		return node, nil
	case '"':
		var text string
		if err := gojay.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		return String(text), nil
	case 't', 'f':
		var flag bool
		if err := gojay.Unmarshal(raw, &flag); err != nil {
			return nil, err
		}
		return Bool(flag), nil
	case 'n':
		if string(raw) != "null" {
			return nil, fmt.Errorf("invalid literal: %s", raw)
		}
		return Null(), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var number float64
		if err := gojay.Unmarshal(raw, &number); err != nil {
			return nil, fmt.Errorf("invalid number: %s, %w", raw, err)
		}
		return Number(string(raw)), nil
	}
	return nil, fmt.Errorf("invalid character '%c' looking for beginning of value", raw[0])
}
