package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// decodeArgs converts the model-supplied argument mapping into dst, a pointer
// to a struct with json tags. Unknown keys and mistyped values are rejected
// with a *domain.ValidationError.
func decodeArgs(tool string, args map[string]any, dst any) error {
	if args == nil {
		args = map[string]any{}
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return &domain.ValidationError{Tool: tool, Reason: "arguments are not serialisable"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &domain.ValidationError{Tool: tool, Reason: describeDecodeError(err)}
	}
	return nil
}

// describeDecodeError turns encoding/json failures into short model-readable reasons.
func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			return "arguments must be an object"
		}
		return fmt.Sprintf("%s must be %s, got %s", field, jsonKind(typeErr.Type.Kind().String()), typeErr.Value)
	}

	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		return "unknown argument " + rest
	}
	return strings.TrimPrefix(msg, "json: ")
}

func jsonKind(goKind string) string {
	switch goKind {
	case "int", "int64", "int32":
		return "an integer"
	case "string":
		return "a string"
	case "bool":
		return "a boolean"
	default:
		return goKind
	}
}

// requireString reports a missing or blank required argument.
func requireString(tool, name string, v *string) error {
	if v == nil {
		return &domain.ValidationError{Tool: tool, Reason: name + " is required"}
	}
	if strings.TrimSpace(*v) == "" {
		return &domain.ValidationError{Tool: tool, Reason: name + " must not be empty"}
	}
	return nil
}

// validationOutput renders a validation failure as tool output.
// Any other error is returned unchanged.
func validationOutput(err error) (domain.ToolOutput, error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return domain.TextOutput(verr.Error()), nil
	}
	return domain.ToolOutput{}, err
}
