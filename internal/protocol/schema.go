package protocol

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	schemaMu    sync.Mutex
	schemaCache = map[string]*jsonschema.Schema{}
)

// Schema compiles (once) one of the embedded message schemas, e.g.
// "input.schema.json".
func Schema(name string) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if s, ok := schemaCache[name]; ok {
		return s, nil
	}
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	s, err := jsonschema.CompileString(name, string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	schemaCache[name] = s
	return s, nil
}

// ValidateRaw checks a raw JSON message against a named schema.
func ValidateRaw(name string, raw []byte) error {
	s, err := Schema(name)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return s.Validate(doc)
}

// DecodeInput validates and decodes an INPUT frame.
func DecodeInput(raw []byte) (InputMsg, error) {
	var in InputMsg
	if err := ValidateRaw("input.schema.json", raw); err != nil {
		return in, err
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, err
	}
	return in, nil
}
