package sources

import "strings"

// Pickup resolves a dot-separated path against a decoded JSON document.
// A missing segment at any depth yields nil; callers treat that as an
// empty result, never an error.
func Pickup(doc any, path string) any {
	if path == "" {
		return doc
	}
	cur := doc
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// AsRecordList coerces an extracted value into a uniform record list: a
// JSON array keeps its object elements, a single object becomes a
// one-element list, anything else is empty.
func AsRecordList(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		return []map[string]any{t}
	}
	return nil
}

// extractRecords decodes a raw body and pulls the record list per the
// descriptor's extraction mode. Malformed JSON degrades to empty.
func extractRecords(body []byte, path string, mode ExtractMode) []map[string]any {
	doc, ok := decodeJSON(body)
	if !ok {
		return nil
	}
	if mode == ExtractRootList {
		return AsRecordList(doc)
	}
	return AsRecordList(Pickup(doc, path))
}
