package reconcile

import "encoding/json"

// maxUnwrapDepth bounds the payload unwrap loop. Years of schema drift in
// the log storage produced items that are JSON strings, JSON strings
// containing JSON strings, and objects wrapped in {"value": ...}; real
// data never nests more than three levels, the bound is headroom.
const maxUnwrapDepth = 6

// unwrapPayload peels a raw log payload down to its innermost object.
// The loop is explicitly iterative and bounded, so termination does not
// depend on the shape of the input. Returns false for anything that does
// not resolve to a JSON object within the bound.
func unwrapPayload(raw interface{}) (map[string]interface{}, bool) {
	current := raw

	for depth := 0; depth < maxUnwrapDepth; depth++ {
		switch v := current.(type) {
		case []byte:
			current = string(v)

		case json.RawMessage:
			current = string(v)

		case string:
			var decoded interface{}
			if err := json.Unmarshal([]byte(v), &decoded); err != nil {
				return nil, false
			}
			current = decoded

		case map[string]interface{}:
			// Legacy wrapper shape: the payload proper lives under "value",
			// either as a nested object or as another JSON string. Only
			// descend when the descent actually yields an object; an
			// ordinary "value" field stays part of the payload.
			if inner, ok := v["value"]; ok {
				switch iv := inner.(type) {
				case map[string]interface{}:
					current = iv
					continue
				case string:
					var decoded interface{}
					if err := json.Unmarshal([]byte(iv), &decoded); err == nil {
						if m, ok := decoded.(map[string]interface{}); ok {
							current = m
							continue
						}
					}
				}
			}
			return v, true

		default:
			return nil, false
		}
	}

	return nil, false
}

// lookup walks a dotted path of object keys, returning the value at the
// end of the path. Any missing or non-object intermediate yields false.
func lookup(obj map[string]interface{}, path ...string) (interface{}, bool) {
	var current interface{} = obj
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
