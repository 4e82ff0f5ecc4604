package geminiservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"PantauSiKecil_AI/internal/utility"
	"github.com/xeipuuv/gojsonschema"
)

// ResponseFormatError is returned when a structured reply is not valid JSON.
// Raw carries the model text for diagnostics.
type ResponseFormatError struct {
	Raw string
	Err error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("model reply is not valid JSON: %v", e.Err)
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }

// Normalize cleans a model reply. Unstructured replies are only trimmed, code
// blocks included; structured ones are fence-stripped and decoded.
func Normalize(raw string, structured bool) (any, error) {
	if !structured {
		return strings.TrimSpace(raw), nil
	}

	cleaned := utility.StripCodeFence(raw)
	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &ResponseFormatError{Raw: raw, Err: err}
	}
	if data == nil {
		return nil, &ResponseFormatError{Raw: raw, Err: errors.New("reply is JSON null")}
	}
	return data, nil
}

// NormalizeWithSchema decodes a structured reply and checks it against schema.
// Schema violations are returned, not raised: the documented shape is what we
// ask for, not what the model guarantees.
func NormalizeWithSchema(raw string, schema *GeminiSchema) (any, []string, error) {
	data, err := Normalize(raw, true)
	if err != nil {
		return nil, nil, err
	}
	if schema == nil {
		return data, nil, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema.JSONSchema()),
		gojsonschema.NewGoLoader(data),
	)
	if err != nil {
		return data, []string{fmt.Sprintf("schema validation failed: %v", err)}, nil
	}

	var violations []string
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return data, violations, nil
}
