package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed candidates_cache.schema.json
var candidatesCacheSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateCandidatesCache checks a persisted candidates-cache document
// against the embedded schema. Invalid documents are treated as absent by
// the file store rather than surfaced as errors.
func ValidateCandidatesCache(raw []byte) error {
	schema, err := loadCandidatesCacheSchema()
	if err != nil {
		return fmt.Errorf("load candidates cache schema: %w", err)
	}

	value, err := decodeStrictJSON(raw)
	if err != nil {
		return fmt.Errorf("decode candidates cache JSON: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("candidates cache schema validation failed: %w", err)
	}
	return nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(new(any)); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return value, nil
}

func loadCandidatesCacheSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("candidates_cache.schema.json", strings.NewReader(candidatesCacheSchemaJSON)); err != nil {
			compiledSchemaErr = err
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile("candidates_cache.schema.json")
	})
	return compiledSchema, compiledSchemaErr
}
