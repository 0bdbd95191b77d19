package component

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stoewer/go-strcase"
)

// Registry stores named assets. Lookups fall through to the parent registry,
// so assets registered on an ancestor after a child was derived remain
// visible to the child.
type Registry struct {
	parent  *Registry
	entries map[string]any
}

// NewRegistry returns an empty registry delegating to parent.
func NewRegistry(parent *Registry) *Registry {
	return &Registry{
		parent:  parent,
		entries: map[string]any{},
	}
}

// Parent returns the registry r delegates to.
func (r *Registry) Parent() *Registry {
	if r == nil {
		return nil
	}
	return r.parent
}

// Register stores value under id on r itself.
func (r *Registry) Register(id string, value any) {
	if r.entries == nil {
		r.entries = map[string]any{}
	}
	r.entries[id] = value
}

// Lookup resolves id through r and its ancestors.
func (r *Registry) Lookup(id string) (any, bool) {
	for cur := r; cur != nil; cur = cur.parent {
		if value, ok := cur.entries[id]; ok {
			return value, true
		}
	}
	return nil, false
}

// Own resolves id on r only.
func (r *Registry) Own(id string) (any, bool) {
	if r == nil {
		return nil, false
	}
	value, ok := r.entries[id]
	return value, ok
}

// OwnNames returns the ids registered on r, sorted.
func (r *Registry) OwnNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.entries))
	for id := range r.entries {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// Names returns every id visible through r, sorted.
func (r *Registry) Names() []string {
	seen := map[string]struct{}{}
	var names []string
	for cur := r; cur != nil; cur = cur.parent {
		for id := range cur.entries {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			names = append(names, id)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of own entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// ResolveAsset looks id up in the registry for kind, trying the id as given,
// its camelCase form and its PascalCase form. Own entries win over inherited
// ones for every form before the parent chain is consulted.
func ResolveAsset(options *Options, kind AssetKind, id string) (any, bool) {
	reg := options.Registry(kind)
	if reg == nil || id == "" {
		return nil, false
	}
	candidates := assetCandidates(id)
	for _, candidate := range candidates {
		if value, ok := reg.Own(candidate); ok {
			return value, true
		}
	}
	for _, candidate := range candidates {
		if value, ok := reg.Lookup(candidate); ok {
			return value, true
		}
	}
	return nil, false
}

func assetCandidates(id string) []string {
	camel := camelize(id)
	pascal := capitalize(camel)
	out := []string{id}
	for _, candidate := range []string{camel, pascal} {
		if candidate != out[len(out)-1] && candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

// camelize turns hyphenated names into camelCase and leaves others intact.
func camelize(name string) string {
	if !strings.Contains(name, "-") {
		return name
	}
	return strcase.LowerCamelCase(name)
}

func capitalize(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
