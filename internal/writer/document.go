package writer

import (
	"encoding/json"
	"fmt"
)

// Decode converts an SDK value into its JSON form: an object for structured
// records or a bare string for services that only list identifiers. Null
// members are dropped so a written file carries only what the service
// returned.
func Decode(item any) (any, error) {
	if s, ok := item.(string); ok {
		return s, nil
	}

	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return prune(decoded), nil
}

// DecodePage decodes every item of a page, keeping order.
func DecodePage[T any](items []T) ([]any, error) {
	docs := make([]any, 0, len(items))
	for i, item := range items {
		doc, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func prune(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, member := range t {
			if member == nil {
				delete(t, k)
				continue
			}
			t[k] = prune(member)
		}
		return t
	case []any:
		for i, elem := range t {
			t[i] = prune(elem)
		}
		return t
	default:
		return v
	}
}
