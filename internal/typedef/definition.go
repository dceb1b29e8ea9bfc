package typedef

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	KindStruct    = "struct"
	KindInterface = "interface"
	KindEnum      = "enum"
)

type (
	// Document represents type definition file
	Document struct {
		Types []*Definition `yaml:"types"`
	}

	// Definition describes a named type, struct by default
	Definition struct {
		Name       string      `yaml:"name"`
		ID         string      `yaml:"id,omitempty"`
		Kind       string      `yaml:"kind,omitempty"`
		Aliases    []string    `yaml:"aliases,omitempty"`
		Implements []string    `yaml:"implements,omitempty"`
		Underlying string      `yaml:"underlying,omitempty"`
		Values     []EnumValue `yaml:"values,omitempty"`
		Fields     []Field     `yaml:"fields,omitempty"`
	}

	// EnumValue represents enum constant, negative values are stored as two's complement
	EnumValue struct {
		Name  string `yaml:"name"`
		Value int64  `yaml:"value"`
	}

	// Field represents struct field, type uses Go syntax: Name, *Name, []Name, [N]Name or map[string]Name
	Field struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
		Base bool   `yaml:"base,omitempty"`
	}
)

// Decode decodes and validates YAML type definitions
func Decode(data []byte) (*Document, error) {
	ret := &Document{}
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode type definitions: %w", err)
	}
	return ret, ret.validate()
}

func (d *Document) validate() error {
	seen := map[string]bool{}
	for _, def := range d.Types {
		def.Name = strings.TrimSpace(def.Name)
		if def.Name == "" {
			return fmt.Errorf("type name was empty")
		}
		if seen[def.Name] {
			return fmt.Errorf("duplicate type: %v", def.Name)
		}
		seen[def.Name] = true
		if def.Kind == "" {
			def.Kind = KindStruct
		}
		switch def.Kind {
		case KindStruct:
			for _, field := range def.Fields {
				if field.Name == "" || field.Type == "" {
					return fmt.Errorf("type %v: field name and type are required", def.Name)
				}
			}
		case KindEnum:
			if def.Underlying == "" {
				def.Underlying = "int32"
			}
		case KindInterface:
			if len(def.Fields) > 0 {
				return fmt.Errorf("interface %v can not declare fields", def.Name)
			}
		default:
			return fmt.Errorf("type %v: unsupported kind %v", def.Name, def.Kind)
		}
	}
	return nil
}
