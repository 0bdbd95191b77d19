// Package layering composes map snapshots ordered from strongest to weakest.
package layering

// MergeLayers composes snapshots ordered from strongest to weakest, returning
// a new map that keeps the keys of stronger layers while filling missing keys
// from weaker ones. Nested map[string]any values present on both sides are
// merged recursively; every other value is shared, not copied.
func MergeLayers(layers ...map[string]any) map[string]any {
	if len(layers) == 0 {
		return nil
	}

	merged := Clone(layers[len(layers)-1])
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeMap(layers[i], merged)
	}
	return merged
}

// Clone copies m and every nested map[string]any reachable from it. Leaf
// values are shared.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	clone := make(map[string]any, len(m))
	for key, value := range m {
		if nested, ok := value.(map[string]any); ok {
			clone[key] = Clone(nested)
			continue
		}
		clone[key] = value
	}
	return clone
}

// mergeMap returns strong layered over weak. weak is owned by the caller and
// may be reused.
func mergeMap(strong, weak map[string]any) map[string]any {
	if strong == nil {
		return weak
	}
	if weak == nil {
		return Clone(strong)
	}
	for key, value := range strong {
		nested, ok := value.(map[string]any)
		if !ok {
			weak[key] = value
			continue
		}
		if existing, ok := weak[key].(map[string]any); ok {
			weak[key] = mergeMap(nested, existing)
			continue
		}
		weak[key] = Clone(nested)
	}
	return weak
}
