//go:build unit || e2e

package testutil

// Field returns a DtoMap mutator that sets key to value; a nil value
// removes the key entirely.
func Field(key string, value any) func(m map[string]any) {
	return func(m map[string]any) {
		if value == nil {
			delete(m, key)
		} else {
			m[key] = value
		}
	}
}
