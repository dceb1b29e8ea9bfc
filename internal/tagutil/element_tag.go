package tagutil

import (
	"reflect"
	"sync"

	"github.com/viant/tagly/format"
)

// ElementTag captures struct tag attributes used to build class elements
type ElementTag struct {
	Name     string
	Explicit bool
	Ignore   bool
	Inline   bool
}

type formatTag struct {
	name       string
	caseFormat string
	ignore     bool
	inline     bool
	valid      bool
}

var formatTagCache sync.Map // map[string]formatTag

// ResolveFieldTag resolves element naming with json tag taking precedence over format tag name or case.
// Embedded fields, jsonx:"inline" and format inline fields are inline, json:"-", internal:"true" and format ignore are ignored.
func ResolveFieldTag(sf reflect.StructField) ElementTag {
	jTag := ParseJSONTag(sf.Name, sf.Tag.Get("json"))
	fTag := loadFormatTag(string(sf.Tag))
	ret := ElementTag{
		Name:     jTag.Name,
		Explicit: jTag.Explicit,
		Ignore:   jTag.Transient || sf.Tag.Get("internal") == "true" || fTag.ignore,
		Inline:   sf.Anonymous || sf.Tag.Get("jsonx") == "inline" || fTag.inline,
	}
	if !jTag.Explicit && fTag.valid && (fTag.name != "" || fTag.caseFormat != "") {
		tag := &format.Tag{Name: fTag.name, CaseFormat: fTag.caseFormat}
		if tag.Name == "" {
			tag.Name = sf.Name
		}
		if name := tag.CaseFormatName(""); name != "" {
			ret.Name = name
			ret.Explicit = true
		}
	}
	return ret
}

func loadFormatTag(rawTag string) formatTag {
	if v, ok := formatTagCache.Load(rawTag); ok {
		return v.(formatTag)
	}
	ret := formatTag{}
	if tag, err := format.Parse(reflect.StructTag(rawTag)); err == nil && tag != nil {
		ret = formatTag{
			name:       tag.Name,
			caseFormat: tag.CaseFormat,
			ignore:     tag.Ignore,
			inline:     tag.Inline,
			valid:      true,
		}
	}
	formatTagCache.Store(rawTag, ret)
	return ret
}
