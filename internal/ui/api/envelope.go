package api

import (
	"github.com/tidwall/gjson"
)

// envelope returns the raw JSON under key. When allowBare is set, a body that is
// itself an array or an object without the key is returned whole. A null field
// is returned as the literal null.
func envelope(body []byte, key string, allowBare bool) ([]byte, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}
	if field := gjson.GetBytes(body, key); field.Exists() {
		return []byte(field.Raw), true
	}
	if !allowBare {
		return nil, false
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() || root.IsObject() {
		return body, true
	}
	return nil, false
}
