package gitcfg

import (
	"context"
	"errors"
	"strings"
)

// ErrKeyNotFound is returned by Get and Unset when the key has no value in the
// store. Callers use errors.Is to tell the expected absent case apart from real
// failures.
var ErrKeyNotFound = errors.New("config key not found")

// Entry is a single key/value pair from the global configuration.
type Entry struct {
	Key   string
	Value string
}

// Store is the global git configuration store. Implementations mutate the
// invoking user's global scope; List returns entries in the order the store
// reports them.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Unset(ctx context.Context, key string) error
	List(ctx context.Context) ([]Entry, error)
}

// SplitKey splits a dotted config key into section, subsection and option name.
// The first dot ends the section and the last dot starts the option name;
// anything between is the subsection, which may contain dots, slashes and
// colons (URL-keyed sections). The subsection is empty for two-part keys.
func SplitKey(key string) (section, subsection, name string, ok bool) {
	first := strings.Index(key, ".")
	last := strings.LastIndex(key, ".")
	if first <= 0 || last >= len(key)-1 {
		return "", "", "", false
	}
	section = key[:first]
	name = key[last+1:]
	if first < last {
		subsection = key[first+1 : last]
	}
	return section, subsection, name, true
}

// JoinKey is the inverse of SplitKey.
func JoinKey(section, subsection, name string) string {
	if subsection == "" {
		return section + "." + name
	}
	return section + "." + subsection + "." + name
}
