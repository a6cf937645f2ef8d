// document shape checks run before anything is written to disk.
// deliberately loose: required members and types, not full fidelity.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var STORE_SCHEMA = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "identifier", "subtitle", "description", "tintColor", "featuredApps", "apps", "news"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "identifier": {"type": "string", "minLength": 1},
    "tintColor": {"type": "string", "pattern": "^#"},
    "featuredApps": {"type": "array", "items": {"type": "string"}, "maxItems": 5},
    "apps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "bundleIdentifier", "developerName", "version", "versionDate", "downloadURL", "size", "appPermissions", "versions"],
        "properties": {
          "size": {"type": "integer", "minimum": 0},
          "appPermissions": {
            "type": "object",
            "required": ["entitlements", "privacy"]
          },
          "versions": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["version", "date", "downloadURL", "size"]
            }
          }
        }
      }
    },
    "news": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "identifier", "caption", "date", "tintColor", "notify", "appID"]
      }
    }
  }
}`

var ESIGN_SCHEMA = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["features", "temporal_info"],
  "properties": {
    "features": {"type": "array", "items": {"type": "string"}},
    "temporal_info": {
      "type": "object",
      "required": ["release_date"],
      "properties": {
        "release_date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
      }
    }
  },
  "additionalProperties": {
    "type": "object",
    "required": ["name", "bundleIdentifier", "developerName", "version", "versionDate", "downloadURL", "size"],
    "properties": {
      "size": {"type": "integer", "minimum": 0},
      "tintColor": {"type": "string"}
    }
  }
}`

var SCARLET_SCHEMA = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "identifier", "subtitle", "description", "version", "versionDate", "accentColor", "localized", "apps"],
  "properties": {
    "version": {"type": "string"},
    "accentColor": {
      "type": "object",
      "required": ["red", "green", "blue"],
      "properties": {
        "red": {"type": "number", "minimum": 0, "maximum": 1},
        "green": {"type": "number", "minimum": 0, "maximum": 1},
        "blue": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "localized": {
      "type": "object",
      "required": ["default"]
    },
    "apps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "bundleIdentifier", "version", "downloadURL", "size", "supportedPlatforms", "metadata"]
      }
    }
  }
}`

// checks the serialized `document_bytes` against `schema_str`.
func validate_document(schema_str string, document_bytes []byte) error {
	compiler := jsonschema.NewCompiler()
	err := compiler.AddResource("document.schema.json", strings.NewReader(schema_str))
	if err != nil {
		return fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile("document.schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	var document any
	err = json.Unmarshal(document_bytes, &document)
	if err != nil {
		return fmt.Errorf("failed to parse document as JSON: %w", err)
	}

	err = schema.Validate(document)
	if err != nil {
		return fmt.Errorf("document failed validation: %w", err)
	}
	return nil
}
