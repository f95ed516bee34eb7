package cache

import (
	"encoding/json"
	"strings"
)

// GenerateKey joins a namespace and an id with ':'.
func GenerateKey(prefix string, id string) string {
	return strings.Join([]string{prefix, id}, ":")
}

// encode stores []byte and string verbatim and everything else as JSON, so
// the memory and Redis backends hold identical bytes.
func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(value)
	}
}

func decode(data []byte, dest interface{}) error {
	switch d := dest.(type) {
	case *[]byte:
		*d = append([]byte(nil), data...)
		return nil
	case *string:
		*d = string(data)
		return nil
	default:
		return json.Unmarshal(data, dest)
	}
}
