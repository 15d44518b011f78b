// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapping

import (
	"github.com/spf13/cast"
)

// lookupMap returns doc[key] when it is an object, or nil.
func lookupMap(doc map[string]any, key string) map[string]any {
	v, ok := doc[key]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m
}

// lookupSlice returns doc[key] when it is a list, or nil.
func lookupSlice(doc map[string]any, key string) []any {
	v, ok := doc[key]
	if !ok {
		return nil
	}
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	return s
}

// lookupString returns doc[key] as a string, or def when the key is absent
// or holds something other than a string.
func lookupString(doc map[string]any, key, def string) string {
	s, ok := doc[key].(string)
	if !ok {
		return def
	}
	return s
}

// lookupScalarText renders doc[key] as text when it is a string or a
// number, so 2021 and "2021" both yield "2021". Anything else yields def.
func lookupScalarText(doc map[string]any, key, def string) string {
	v, ok := doc[key]
	if !ok || v == nil {
		return def
	}
	switch v.(type) {
	case string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
	default:
		if _, isNumber := v.(interface{ Float64() (float64, error) }); !isNumber {
			return def
		}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}
