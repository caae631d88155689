package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds each Schema compiled once, keyed by name.
var compiledSchemas = &schemaSet{byName: make(map[string]*jsonschema.Schema)}

type schemaSet struct {
	mu     sync.Mutex
	byName map[string]*jsonschema.Schema
}

func (s *schemaSet) get(schema *Schema) (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.byName[schema.Name]; ok {
		return c, nil
	}

	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	url := "schema://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	s.byName[schema.Name] = compiled
	return compiled, nil
}

// ValidateJSON checks raw against schema. A nil schema accepts anything.
// Failures are *ErrInvalidResponse carrying raw.
func ValidateJSON(schema *Schema, raw []byte) error {
	if schema == nil {
		return nil
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("response is not JSON: %w", err)}
	}

	compiled, err := compiledSchemas.get(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema %s: %w", schema.Name, err)}
	}

	if err := compiled.Validate(inst); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	return nil
}
