package core

// Merge deep-merges incoming plugin keys into an existing settings document,
// returning a new document. The existing document always wins on conflict:
//
//   - a key absent from existing is copied from incoming (nested structure
//     and all),
//   - a key present in both where both values are objects is merged
//     recursively,
//   - any other collision (scalar, list, or type mismatch) keeps the
//     existing value untouched.
//
// Lists are atomic: an existing list is never merged element-wise with an
// incoming one. Neither input is mutated, and the operation is idempotent:
// merging the same incoming keys twice yields the same document.
func Merge(existing, incoming map[string]any) map[string]any {
	if existing == nil {
		return cloneMap(incoming)
	}

	result := cloneMap(existing)
	for key, incomingVal := range incoming {
		existingVal, present := result[key]
		if !present {
			result[key] = cloneValue(incomingVal)
			continue
		}

		existingMap, existingIsMap := existingVal.(map[string]any)
		incomingMap, incomingIsMap := incomingVal.(map[string]any)
		if existingIsMap && incomingIsMap {
			result[key] = Merge(existingMap, incomingMap)
			continue
		}

		// Conflict on anything that isn't two objects: the user's value wins.
	}
	return result
}

// cloneMap returns a deep copy of m. A nil map clones to an empty one so
// callers always get a document they own.
func cloneMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = cloneValue(v)
	}
	return result
}

// cloneValue deep-copies a JSON-shaped value (scalars, []any, map[string]any).
func cloneValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		return cloneMap(vv)
	case []any:
		result := make([]any, len(vv))
		for i, elem := range vv {
			result[i] = cloneValue(elem)
		}
		return result
	default:
		return v
	}
}
