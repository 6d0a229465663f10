package task

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/todo-go/internal/utils"
)

//go:embed tasks.schema.json
var schemaJSON string

const embeddedSchemaURL = "https://github.com/nibzard/todo-go/tasks.schema.json"

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath overrides the embedded JSON Schema.
	SchemaPath string
	// SkipSchema forces the minimal checks.
	SkipSchema bool
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
	Count      int  // number of records in the snapshot
}

// Validate checks a stored snapshot. Load never rejects data on these
// grounds; this is a diagnostic.
func Validate(data []byte, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)})
		return result
	}
	if items, ok := doc.([]any); ok {
		result.Count = len(items)
	}

	if !opts.SkipSchema {
		schemaResult := validateWithSchema(doc, opts.SchemaPath)
		result.Warnings = append(result.Warnings, schemaResult.Warnings...)
		if schemaResult.UsedSchema {
			result.UsedSchema = true
			if !schemaResult.Valid {
				result.Valid = false
				result.Errors = append(result.Errors, schemaResult.Errors...)
			}
			return result
		}
		result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
	}

	validateMinimal(doc, result)
	return result
}

func compileSchema(schemaPath string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if schemaPath == "" {
		if err := compiler.AddResource(embeddedSchemaURL, strings.NewReader(schemaJSON)); err != nil {
			return nil, fmt.Errorf("load embedded schema: %w", err)
		}
		return compiler.Compile(embeddedSchemaURL)
	}

	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("schema file not found: %s", absPath)
		}
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return compiler.Compile(absPath)
}

// validateWithSchema attempts JSON Schema validation.
func validateWithSchema(doc any, schemaPath string) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	schema, err := compileSchema(schemaPath)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("invalid schema: %v", err))
		return result
	}
	result.UsedSchema = true

	if err := schema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
	return result
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// validateMinimal performs minimal validation without JSON Schema.
func validateMinimal(doc any, result *ValidationResult) {
	items, ok := doc.([]any)
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("expected an array of tasks")})
		return
	}

	for i, item := range items {
		path := fmt.Sprintf("[%d]", i)
		rec, ok := item.(map[string]any)
		if !ok {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{Path: path, Err: fmt.Errorf("expected an object")})
			continue
		}
		for _, err := range validateRecordMinimal(rec, path) {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
}

func validateRecordMinimal(rec map[string]any, path string) []error {
	var errs []error
	fail := func(field string, err error) {
		errs = append(errs, &ValidationError{Path: path + "." + field, Err: err})
	}

	text, ok := rec["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		fail("text", fmt.Errorf("required non-empty string"))
	}
	if _, ok := rec["completed"].(bool); !ok {
		fail("completed", fmt.Errorf("required boolean"))
	}
	if v, present := rec["priority"]; present {
		p, _ := v.(string)
		if Priority(p).Rank() == 0 {
			fail("priority", fmt.Errorf("must be one of: high, medium, low"))
		}
	}
	if v, present := rec["dueDate"]; present {
		s, _ := v.(string)
		if _, err := time.Parse(DateLayout, s); err != nil {
			fail("dueDate", fmt.Errorf("expected YYYY-MM-DD, got %v", v))
		}
	}
	if v, present := rec["addedDate"]; present {
		s, _ := v.(string)
		if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
			fail("addedDate", fmt.Errorf("expected RFC 3339 timestamp, got %v", v))
		}
	}
	if v, present := rec["tags"]; present {
		tags, ok := v.([]any)
		if !ok {
			fail("tags", fmt.Errorf("expected an array of strings"))
		} else {
			for j, tag := range tags {
				if s, ok := tag.(string); !ok || strings.TrimSpace(s) == "" {
					errs = append(errs, &ValidationError{
						Path: fmt.Sprintf("%s.tags[%d]", path, j),
						Err:  fmt.Errorf("expected a non-empty string"),
					})
				}
			}
		}
	}
	return errs
}
