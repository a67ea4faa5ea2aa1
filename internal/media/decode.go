package media

import (
	"encoding/json"
	"strings"
)

// DecodeImages decodes a JSONB images column while keeping its shape. A
// string holding an encoded array is unwrapped once; undecodable content is
// kept as a raw string.
func DecodeImages(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	if s, ok := v.(string); ok && strings.HasPrefix(strings.TrimSpace(s), "[") {
		var inner []any
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			return inner
		}
	}
	return v
}
