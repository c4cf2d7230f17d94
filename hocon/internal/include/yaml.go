package include

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"go.jacobcolvin.com/hocon/internal/raw"
)

// decodeYAML parses data as YAML and lifts it into a raw.Value tree.
// This is the supplemental syntax SPEC_FULL.md adds beyond spec.md's
// JSON/properties pair, wired to the teacher's YAML stack (goccy/go-yaml)
// rather than hand-rolling a decoder.
func decodeYAML(data []byte) (*raw.Value, error) {
	var v any

	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	root := yamlToRaw(v)
	if root.Kind != raw.KindObject {
		return nil, fmt.Errorf("yaml include root must be a mapping, got %s", root.Kind)
	}

	return root, nil
}

func yamlToRaw(v any) *raw.Value {
	pos := raw.Position{}

	switch val := v.(type) {
	case nil:
		return raw.NewNull(pos)
	case bool:
		return raw.NewBool(pos, val)
	case int:
		return raw.NewNumber(pos, raw.Number{IsInt: true, Int: int64(val)})
	case int64:
		return raw.NewNumber(pos, raw.Number{IsInt: true, Int: val})
	case uint64:
		return raw.NewNumber(pos, raw.Number{IsInt: true, Int: int64(val)})
	case float64:
		return raw.NewNumber(pos, numberFromFloat(val))
	case string:
		return raw.NewString(pos, val, raw.StringQuoted)
	case []any:
		elems := make([]*raw.Value, len(val))
		for i, e := range val {
			elems[i] = yamlToRaw(e)
		}

		return raw.NewArray(pos, elems)
	case map[string]any:
		fields := make([]raw.ObjectField, 0, len(val))
		for k, fv := range val {
			fields = append(fields, raw.ObjectField{Key: []string{k}, Value: yamlToRaw(fv)})
		}

		return raw.NewObject(pos, fields)
	case map[any]any:
		fields := make([]raw.ObjectField, 0, len(val))
		for k, fv := range val {
			fields = append(fields, raw.ObjectField{Key: []string{fmt.Sprint(k)}, Value: yamlToRaw(fv)})
		}

		return raw.NewObject(pos, fields)
	default:
		return raw.NewNull(pos)
	}
}
