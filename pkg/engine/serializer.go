package engine

import (
	"reflect"
	"sort"
	"time"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// Serialize recursively converts a node's structured output into a
// JSON-safe value: time.Time becomes an RFC3339 string; a set
// (modeled as map[string]struct{}) becomes a lexicographically sorted
// []string; maps are walked with stringified keys; slices are walked
// element-wise; everything else passes through unchanged.
func Serialize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format(time.RFC3339)
	case models.NodeOutput:
		return serializeMap(val)
	case map[string]struct{}:
		return sortedKeys(val)
	case map[string]any:
		return serializeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = Serialize(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]any, rv.Len())
			for _, k := range rv.MapKeys() {
				out[k.String()] = Serialize(rv.MapIndex(k).Interface())
			}
			return out
		}
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Serialize(rv.Index(i).Interface())
		}
		return out
	}

	return v
}

func serializeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Serialize(v)
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
