package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bdobrica/Vaani/common/yamlschema"
	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

const overlaySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["entries"],
  "additionalProperties": false,
  "properties": {
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["action", "phrases"],
        "additionalProperties": false,
        "properties": {
          "language": {"type": "string", "enum": ["en", "hi"]},
          "action":   {"type": "string", "pattern": "^[a-z_]+$"},
          "phrases":  {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}}
        }
      }
    }
  }
}`

var compiledOverlaySchema = yamlschema.MustCompile("overlay.schema.json", overlaySchema)

type overlayFile struct {
	Entries []struct {
		Language string   `yaml:"language"`
		Action   string   `yaml:"action"`
		Phrases  []string `yaml:"phrases"`
	} `yaml:"entries"`
}

// LoadOverlay reads additional lexicon entries from a YAML file. The document
// must look like:
//
//	entries:
//	  - language: hi
//	    action: open_app
//	    phrases: ["shuru karo"]
//
// When language is omitted each phrase is tagged by the detector.
func LoadOverlay(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: read overlay: %w", err)
	}
	return ParseOverlay(data)
}

// ParseOverlay is LoadOverlay for in-memory documents.
func ParseOverlay(data []byte) ([]Entry, error) {
	if err := yamlschema.Validate(compiledOverlaySchema, data); err != nil {
		return nil, fmt.Errorf("lexicon: overlay: %w", err)
	}

	var doc overlayFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("lexicon: overlay: %w", err)
	}

	var out []Entry
	for i, e := range doc.Entries {
		key, ok := action.ParseKey(e.Action)
		if !ok {
			return nil, fmt.Errorf("lexicon: overlay entry %d: %w: %q", i, ErrUnknownAction, e.Action)
		}
		if l, ok := lang.Parse(e.Language); ok {
			out = append(out, Entry{Language: l, Key: key, Phrases: e.Phrases})
			continue
		}
		for _, p := range e.Phrases {
			out = append(out, Entry{Language: Detect(Normalize(p)), Key: key, Phrases: []string{p}})
		}
	}
	return out, nil
}
