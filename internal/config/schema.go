package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/systmms/kpsec/pkg/vault"
	"github.com/xeipuuv/gojsonschema"
)

// definitionSchema constrains vaults.yaml. Type-specific keys stay open
// (each source factory validates its own bag); the schema pins the shape.
const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "vaults"],
  "properties": {
    "version": {"type": "integer", "minimum": 1, "maximum": 1},
    "vaults": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": {"enum": ["kdbx", "keychain", "aws.secretsmanager"]}
        }
      }
    }
  }
}`

// validateDefinition checks the generically-parsed YAML document against
// the embedded JSON schema. YAML is round-tripped through JSON since the
// schema library speaks JSON only.
func validateDefinition(raw map[string]interface{}) error {
	doc, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(definitionSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return vault.ConfigError{
			Field:   "vaults.yaml",
			Message: "schema validation failed: " + strings.Join(msgs, "; "),
		}
	}

	return nil
}
