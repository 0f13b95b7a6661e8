package openapi

import (
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// RenderYAML serializes a document tree as YAML. The tree is round-tripped
// through JSON first so that every value is a plain Go type before YAML
// encoding.
func RenderYAML(doc map[string]any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, err
	}
	return yaml.Marshal(normalized)
}
