package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk layout of a knowledge file.
type Document struct {
	Version string  `json:"version,omitempty" yaml:"version,omitempty"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

const documentSchema = `{
  "type": "object",
  "required": ["entries"],
  "properties": {
    "version": {"type": "string"},
    "entries": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["key", "keywords", "response"],
        "additionalProperties": false,
        "properties": {
          "key": {"type": "string", "minLength": 1},
          "keywords": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          },
          "response": {"type": "string"},
          "options": {"type": "array", "items": {"type": "string"}},
          "category": {"type": "string"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// Load reads a knowledge file. The format is chosen by extension:
// .yaml/.yml or .json.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file: %w", err)
	}

	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = ParseYAML(data)
	case ".json":
		doc, err = ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported knowledge file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base, err := New(doc.Entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base.source = path
	return base, nil
}

// ParseJSON validates and decodes a JSON knowledge document.
func ParseJSON(data []byte) (*Document, error) {
	if err := validate(gojsonschema.NewBytesLoader(data)); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge json: %w", err)
	}
	return &doc, nil
}

// ParseYAML validates and decodes a YAML knowledge document. The YAML
// tree is checked against the same schema as JSON documents.
func ParseYAML(data []byte) (*Document, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge yaml: %w", err)
	}
	if err := validate(gojsonschema.NewGoLoader(raw)); err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge yaml: %w", err)
	}
	return &doc, nil
}

func validate(doc gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, doc)
	if err != nil {
		return fmt.Errorf("failed to validate knowledge document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("knowledge document does not match schema: %s", strings.Join(msgs, "; "))
}
