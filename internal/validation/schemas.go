package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator guards the pipeline against malformed payloads from the
// external search provider and the ranking signal. A payload that fails
// validation is treated as zero candidates for that round, never as a crash.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

const placeSearchResponseSchema = `{
	"type": "object",
	"required": ["documents"],
	"properties": {
		"documents": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["place_name"],
				"properties": {
					"id": {"type": "string"},
					"place_name": {"type": "string"},
					"category_name": {"type": "string"},
					"category_group_code": {"type": "string"},
					"address_name": {"type": "string"},
					"road_address_name": {"type": "string"},
					"x": {"type": "string"},
					"y": {"type": "string"},
					"distance": {"type": "string"}
				}
			}
		}
	}
}`

const rankingResponseSchema = `{
	"type": "object",
	"required": ["ranking"],
	"properties": {
		"ranking": {
			"type": "array",
			"items": {"type": "integer", "minimum": 0}
		}
	}
}`

func NewSchemaValidator() (*SchemaValidator, error) {
	sv := &SchemaValidator{
		schemas: make(map[string]*gojsonschema.Schema),
	}

	sources := map[string]string{
		"place-search-response": placeSearchResponseSchema,
		"ranking-response":      rankingResponseSchema,
	}

	for name, source := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		sv.schemas[name] = schema
	}

	return sv, nil
}

// ValidatePlaceSearchResponse validates a raw provider search payload.
func (sv *SchemaValidator) ValidatePlaceSearchResponse(payload []byte) error {
	return sv.validate("place-search-response", payload)
}

// ValidateRankingResponse validates a ranking-signal payload.
func (sv *SchemaValidator) ValidateRankingResponse(payload []byte) error {
	return sv.validate("ranking-response", payload)
}

func (sv *SchemaValidator) validate(schemaName string, payload []byte) error {
	schema, exists := sv.schemas[schemaName]
	if !exists {
		return fmt.Errorf("unknown schema: %s", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var violations []string
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return fmt.Errorf("payload does not match %s schema: %s",
			schemaName, strings.Join(violations, "; "))
	}

	return nil
}
