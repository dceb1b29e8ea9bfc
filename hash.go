package structload

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// NameHash returns a stable hash of a trimmed element or type name
func NameHash(name string) uint64 {
	return xxhash.Sum64String(strings.TrimSpace(name))
}
