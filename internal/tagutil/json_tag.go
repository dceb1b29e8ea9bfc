package tagutil

import "strings"

// JSONTag represents parsed json struct tag
type JSONTag struct {
	Name      string
	Explicit  bool
	Transient bool
}

func ParseJSONTag(defaultName string, raw string) JSONTag {
	if raw == "" {
		return JSONTag{Name: defaultName}
	}
	name := raw
	if index := strings.IndexByte(raw, ','); index != -1 {
		name = raw[:index]
	}
	if name == "" {
		return JSONTag{Name: defaultName}
	}
	return JSONTag{Name: name, Explicit: true, Transient: name == "-"}
}
