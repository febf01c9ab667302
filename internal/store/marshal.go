package store

import (
	"encoding/json"
	"fmt"
)

// DecodePayload parses a stored payload back into generic JSON values.
func DecodePayload(data string) (any, error) {
	if data == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return v, nil
}
