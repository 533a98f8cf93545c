package library

import (
	"encoding/json"
	"io"

	"tagflow/internal/services"
)

// DecodePathList parses a JSON array of path strings.
func DecodePathList(r io.Reader) ([]string, error) {
	var paths []string
	if err := json.NewDecoder(r).Decode(&paths); err != nil {
		return nil, &services.ValidationError{Entity: "music", Field: "paths", Msg: "expected a JSON array of path strings"}
	}
	return paths, nil
}
