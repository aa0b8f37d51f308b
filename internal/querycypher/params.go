package querycypher

import (
	"math"
	"reflect"

	"github.com/roach88/quiver/internal/queryir"
)

// paramRegistry is the ordered, deduplicating set of parameters referenced
// during one compilation.
type paramRegistry struct {
	order  []string
	values map[string]any
}

func newParamRegistry() *paramRegistry {
	return &paramRegistry{values: make(map[string]any)}
}

// register records a reference to name. The first reference fixes the
// value; later references must carry an equal value.
func (r *paramRegistry) register(name string, value any) error {
	if !isSimpleIdentifier(name) {
		return queryir.GrammarErrorf("", "parameter name %q is not an identifier", name)
	}
	if prev, ok := r.values[name]; ok {
		if !sameValue(prev, value) {
			return queryir.GrammarErrorf("", "parameter $%s bound to conflicting values %v and %v", name, prev, value)
		}
		return nil
	}
	r.order = append(r.order, name)
	r.values[name] = value
	return nil
}

// sameValue reports whether two references to one parameter carry the
// same value. NaN matches NaN, and func values cannot be compared so they
// never conflict.
func sameValue(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok && math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
	}
	return isFunc(a) && isFunc(b)
}

func asFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	return 0, false
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// names returns parameter names in first-seen order.
func (r *paramRegistry) names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// materialize returns the name → value mapping.
func (r *paramRegistry) materialize() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
