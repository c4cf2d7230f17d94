package include

import (
	"encoding/json"
	"fmt"

	"go.jacobcolvin.com/hocon/internal/raw"
)

// decodeJSON parses data as JSON and lifts it into a raw.Value tree, per
// spec.md §4.6.3 ("a .json include is decoded with the standard JSON
// grammar and lifted directly into an already-merged Object/Array/
// scalar tree — no further HOCON-specific parsing applies").
func decodeJSON(data []byte) (*raw.Value, error) {
	var v any

	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	root := jsonToRaw(v)
	if root.Kind != raw.KindObject {
		return nil, fmt.Errorf("json include root must be an object, got %s", root.Kind)
	}

	return root, nil
}

func jsonToRaw(v any) *raw.Value {
	pos := raw.Position{}

	switch val := v.(type) {
	case nil:
		return raw.NewNull(pos)
	case bool:
		return raw.NewBool(pos, val)
	case float64:
		return raw.NewNumber(pos, numberFromFloat(val))
	case string:
		return raw.NewString(pos, val, raw.StringQuoted)
	case []any:
		elems := make([]*raw.Value, len(val))
		for i, e := range val {
			elems[i] = jsonToRaw(e)
		}

		return raw.NewArray(pos, elems)
	case map[string]any:
		// encoding/json does not preserve key order; sort is unnecessary
		// here because JSON object field order has no merge-order meaning
		// once lifted (the whole include is one already-merged fragment).
		fields := make([]raw.ObjectField, 0, len(val))
		for k, fv := range val {
			fields = append(fields, raw.ObjectField{Key: []string{k}, Value: jsonToRaw(fv)})
		}

		return raw.NewObject(pos, fields)
	default:
		return raw.NewNull(pos)
	}
}

func numberFromFloat(f float64) raw.Number {
	if i := int64(f); float64(i) == f {
		return raw.Number{IsInt: true, Int: i}
	}

	return raw.Number{Float: f}
}
