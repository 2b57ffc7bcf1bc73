// internal/transport/httpapi/schemas.go
package httpapi

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const queryRequestSchema = `{
	"type": "object",
	"required": ["query"],
	"properties": {
		"query": {"type": "string", "minLength": 1, "maxLength": 500}
	},
	"additionalProperties": false
}`

const selectRequestSchema = `{
	"type": "object",
	"required": ["workflowId", "selection"],
	"properties": {
		"workflowId": {"type": "string", "minLength": 1},
		"selection": {"type": "integer", "minimum": 0}
	},
	"additionalProperties": false
}`

var (
	queryRequestValidator  = mustCompileSchema(queryRequestSchema)
	selectRequestValidator = mustCompileSchema(selectRequestSchema)
)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// validateBody checks raw JSON against a compiled schema and flattens the
// violations into one message.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("request is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return fmt.Errorf("invalid request: %s", strings.Join(violations, "; "))
}
