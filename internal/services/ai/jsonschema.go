package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/xeipuuv/gojsonschema"
)

var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON returns the outermost {...} block of an AI reply.
// Markdown fences and leading prose are tolerated.
func ExtractJSON(text string) (string, bool) {
	match := jsonObjectRegex.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.TrimSpace(match), true
}

// DecodeJSON extracts a JSON object from text, validates it against schema
// (when non-nil) and unmarshals it into out.
func DecodeJSON(text string, schema map[string]interface{}, out interface{}) error {
	raw, ok := ExtractJSON(text)
	if !ok {
		return fmt.Errorf("no JSON object in AI response: %w", interfaces.ErrInvalidInput)
	}

	var document interface{}
	if err := json.Unmarshal([]byte(raw), &document); err != nil {
		return fmt.Errorf("malformed JSON in AI response: %w", err)
	}

	if schema != nil {
		if err := ValidateDocument(schema, document); err != nil {
			return err
		}
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to decode AI response: %w", err)
	}
	return nil
}

// ValidateDocument validates a decoded JSON document against a schema
func ValidateDocument(schema map[string]interface{}, document interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("AI response does not match schema: %s: %w", strings.Join(errs, "; "), interfaces.ErrInvalidInput)
	}
	return nil
}

// StringArray is a schema fragment for a list of strings
func StringArray() map[string]interface{} {
	return map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "string"},
	}
}

// ObjectSchema builds an object schema with the given properties and required keys
func ObjectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
