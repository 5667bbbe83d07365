// Package shape validates JSON documents against declarative shapes.
//
// A shape describes the minimum a resource document must look like before it
// is mirrored to disk. Shapes are deliberately permissive: unknown fields pass
// through untouched and most fields are optional, because AWS returns partial
// data depending on the caller's permissions.
//
// Shapes compile to JSON Schema (draft 2020-12) and are validated by
// santhosh-tekuri/jsonschema. A null member counts as absent.
package shape

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// DefaultMaxString caps string values unless a shape says otherwise.
const DefaultMaxString = 10 * 1000

// Shape is a declarative description of a decoded JSON value.
type Shape interface {
	// Schema returns the JSON Schema for the shape.
	Schema() map[string]any
}

// Issue is a single validation failure.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Issue codes.
const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeTooSmall    = "too_small"
	CodeTooBig      = "too_big"
	CodeInvalidEnum = "invalid_enum_value"
	CodeInvalidDate = "invalid_date"
	CodeInvalid     = "invalid"
)

// ValidationError is returned when a value does not match its shape.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "schema validation failed"
	}
	first := e.Issues[0]
	msg := fmt.Sprintf("schema validation failed: %s at %q", first.Message, first.Path)
	if len(e.Issues) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(e.Issues)-1)
	}
	return msg
}

// Details exposes the issues for error reports.
func (e *ValidationError) Details() map[string]any {
	return map[string]any{"issues": e.Issues}
}

// compiled caches one schema per shape. Shapes are not modified after they
// are first validated.
var compiled sync.Map

func compile(s Shape) (*jsonschema.Schema, error) {
	if sch, ok := compiled.Load(s); ok {
		return sch.(*jsonschema.Schema), nil
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	c.AssertFormat()
	if err := c.AddResource("shape.json", s.Schema()); err != nil {
		return nil, fmt.Errorf("add shape schema: %w", err)
	}
	sch, err := c.Compile("shape.json")
	if err != nil {
		return nil, fmt.Errorf("compile shape schema: %w", err)
	}

	actual, _ := compiled.LoadOrStore(s, sch)
	return actual.(*jsonschema.Schema), nil
}

// Validate checks v against s. Mismatches are reported as a
// *ValidationError listing every issue, ordered by path.
func Validate(s Shape, v any) error {
	sch, err := compile(s)
	if err != nil {
		return err
	}

	err = sch.Validate(withoutNulls(v))
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("validate: %w", err)
	}

	var issues []Issue
	collect(verr, &issues)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return &ValidationError{Issues: issues}
}

// collect flattens the leaves of the library's error tree into issues.
func collect(e *jsonschema.ValidationError, issues *[]Issue) {
	if len(e.Causes) > 0 {
		for _, cause := range e.Causes {
			collect(cause, issues)
		}
		return
	}

	path := strings.Join(e.InstanceLocation, "/")
	switch k := e.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			*issues = append(*issues, Issue{Path: join(path, name), Code: CodeRequired, Message: "required"})
		}
	case *kind.Type:
		*issues = append(*issues, Issue{Path: path, Code: CodeInvalidType,
			Message: fmt.Sprintf("expected %s, received %s", strings.Join(k.Want, " or "), k.Got)})
	case *kind.Enum:
		*issues = append(*issues, Issue{Path: path, Code: CodeInvalidEnum,
			Message: fmt.Sprintf("invalid enum value %v", k.Got)})
	case *kind.Format:
		*issues = append(*issues, Issue{Path: path, Code: CodeInvalidDate,
			Message: fmt.Sprintf("invalid %s %v", k.Want, k.Got)})
	case *kind.MinLength:
		*issues = append(*issues, Issue{Path: path, Code: CodeTooSmall,
			Message: fmt.Sprintf("string must contain at least %d character(s)", k.Want)})
	case *kind.MaxLength:
		*issues = append(*issues, Issue{Path: path, Code: CodeTooBig,
			Message: fmt.Sprintf("string must contain at most %d character(s)", k.Want)})
	case *kind.MinItems:
		*issues = append(*issues, Issue{Path: path, Code: CodeTooSmall,
			Message: fmt.Sprintf("array must contain at least %d element(s)", k.Want)})
	case *kind.MaxItems:
		*issues = append(*issues, Issue{Path: path, Code: CodeTooBig,
			Message: fmt.Sprintf("array must contain at most %d element(s)", k.Want)})
	default:
		*issues = append(*issues, Issue{Path: path, Code: CodeInvalid,
			Message: strings.Join(e.ErrorKind.KeywordPath(), "/") + " failed"})
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "/" + name
}

// withoutNulls copies v with null object members removed.
func withoutNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, member := range t {
			if member == nil {
				continue
			}
			out[k] = withoutNulls(member)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = withoutNulls(elem)
		}
		return out
	}
	return v
}

// StringShape matches strings with a length range and an optional enum.
type StringShape struct {
	min, max int
	enum     []string
}

// String matches a non-empty string up to DefaultMaxString characters.
func String() *StringShape {
	return &StringShape{min: 1, max: DefaultMaxString}
}

// Min sets the minimum length.
func (s *StringShape) Min(n int) *StringShape {
	s.min = n
	return s
}

// Max sets the maximum length.
func (s *StringShape) Max(n int) *StringShape {
	s.max = n
	return s
}

// OneOf restricts the value to the given literals.
func (s *StringShape) OneOf(values ...string) *StringShape {
	s.enum = values
	return s
}

func (s *StringShape) Schema() map[string]any {
	schema := map[string]any{"type": "string"}
	if s.min > 0 {
		schema["minLength"] = s.min
	}
	if s.max > 0 {
		schema["maxLength"] = s.max
	}
	if len(s.enum) > 0 {
		enum := make([]any, len(s.enum))
		for i, e := range s.enum {
			enum[i] = e
		}
		schema["enum"] = enum
	}
	return schema
}

type numberShape struct{}

// Number matches any JSON number.
func Number() Shape { return numberShape{} }

func (numberShape) Schema() map[string]any {
	return map[string]any{"type": "number"}
}

type boolShape struct{}

// Bool matches a JSON boolean.
func Bool() Shape { return boolShape{} }

func (boolShape) Schema() map[string]any {
	return map[string]any{"type": "boolean"}
}

type timeShape struct{}

// Time matches an RFC 3339 timestamp, the form time.Time marshals to.
func Time() Shape { return timeShape{} }

func (timeShape) Schema() map[string]any {
	return map[string]any{"type": "string", "format": "date-time"}
}

// ArrayShape matches a JSON array whose elements match an element shape.
type ArrayShape struct {
	elem     Shape
	min, max int
}

// Array matches an array of elem with no length bounds.
func Array(elem Shape) *ArrayShape {
	return &ArrayShape{elem: elem, max: -1}
}

// Min sets the minimum number of elements.
func (a *ArrayShape) Min(n int) *ArrayShape {
	a.min = n
	return a
}

// Max sets the maximum number of elements.
func (a *ArrayShape) Max(n int) *ArrayShape {
	a.max = n
	return a
}

func (a *ArrayShape) Schema() map[string]any {
	schema := map[string]any{
		"type":  "array",
		"items": a.elem.Schema(),
	}
	if a.min > 0 {
		schema["minItems"] = a.min
	}
	if a.max >= 0 {
		schema["maxItems"] = a.max
	}
	return schema
}

// Field declares one named member of an object shape.
type Field struct {
	Name     string
	Shape    Shape
	Required bool
}

// Required declares a field that must be present and non-null.
func Required(name string, s Shape) Field {
	return Field{Name: name, Shape: s, Required: true}
}

// Optional declares a field that may be absent or null.
func Optional(name string, s Shape) Field {
	return Field{Name: name, Shape: s}
}

// ObjectShape matches a JSON object. Undeclared members pass through.
type ObjectShape struct {
	fields []Field
}

// Object matches an object with the given fields.
func Object(fields ...Field) *ObjectShape {
	return &ObjectShape{fields: fields}
}

func (o *ObjectShape) Schema() map[string]any {
	properties := make(map[string]any, len(o.fields))
	var required []any
	for _, f := range o.fields {
		properties[f.Name] = f.Shape.Schema()
		if f.Required {
			required = append(required, f.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Page is the collection shape used to validate one page of listed items.
func Page(item Shape) *ArrayShape {
	return Array(item).Max(10 * 1000 * 1000)
}
