package accounts

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// accountsSchema describes the accounts.json layout: a map from account
// name to a record with an added_at timestamp and an optional api_key
// (absent when the key lives in the OS keychain).
const accountsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "api_key": {"type": "string", "minLength": 1},
      "added_at": {"type": "string", "minLength": 1}
    },
    "required": ["added_at"],
    "additionalProperties": false
  }
}`

// ValidateAccountsJSON checks raw accounts.json bytes against the schema.
func ValidateAccountsJSON(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(accountsSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return fmt.Errorf("accounts file failed validation:\n  - %s", strings.Join(messages, "\n  - "))
	}

	return nil
}
