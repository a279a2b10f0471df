package ipc

import (
	"strings"

	"github.com/lwalter/unisock/ipc/common"
)

// PathResolver turns user supplied socket names into absolute filesystem
// paths. The base directory is an explicit per-resolver value so independent
// listeners and clients in one process (e.g. under test) can use different
// directories without interference.
type PathResolver struct {
	base string
}

// NewPathResolver creates a resolver for the given base directory. An empty
// base falls back to common.DefaultBaseDir.
func NewPathResolver(base string) PathResolver {
	if base == "" {
		base = common.DefaultBaseDir
	}
	return PathResolver{base: base}
}

// Base returns the base directory of the resolver.
func (r PathResolver) Base() string {
	return r.base
}

// Resolve returns name unchanged if it is already absolute, otherwise name
// joined to the base directory.
func (r PathResolver) Resolve(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return r.base + "/" + name
}
