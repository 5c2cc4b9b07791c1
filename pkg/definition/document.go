package definition

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is an insertion-ordered JSON object.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an Object holding the given key/value pairs, which must
// alternate between string keys and values.
func NewObject(kv ...any) *Object {
	o := orderedmap.New[string, any]()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

// Prune returns v with every empty value removed at any depth. Empty values
// are nil, "", and objects, maps and slices without elements; an object
// whose members are all empty is itself empty. Prune returns nil when v is
// empty. Slice elements are kept in place, only nested objects inside them
// are pruned.
func Prune(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return v
	case *Object:
		if v == nil {
			return nil
		}
		out := orderedmap.New[string, any]()
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			if p := Prune(pair.Value); p != nil {
				out.Set(pair.Key, p)
			}
		}
		if out.Len() == 0 {
			return nil
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if p := Prune(val); p != nil {
				out[k] = p
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		if len(v) == 0 {
			return nil
		}
		out := make([]any, len(v))
		for i, elem := range v {
			if _, ok := elem.(*Object); ok {
				elem = Prune(elem)
			}
			out[i] = elem
		}
		return out
	case []string:
		if len(v) == 0 {
			return nil
		}
		return v
	default:
		return v
	}
}

// Marshal encodes v as JSON indented with two spaces. Object key order is
// preserved and HTML characters are not escaped.
func Marshal(v any) (string, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, v); err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", fmt.Errorf("indent json: %w", err)
	}
	return out.String(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case *Object:
		if v == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		first := true
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeValue(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, pair.Value); err != nil {
				return fmt.Errorf("%s: %w", pair.Key, err)
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		return writeValue(buf, v)
	}
}

func writeValue(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %T: %w", v, err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
