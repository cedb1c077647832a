package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds *jsonschema.Schema values keyed by Schema.Name. Names are
// assumed to identify a definition for the life of the process.
var compiled sync.Map

// Validate checks raw JSON against schema. It reports *ErrInvalidResponse
// on failure.
func Validate(schema *Schema, raw json.RawMessage) error {
	return validateResponse(schema, raw)
}

func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf(format, args...)}
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return invalid("not JSON: %w", err)
	}
	sch, err := compile(schema)
	if err != nil {
		return invalid("schema %s: %w", schema.Name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return invalid("does not match %s: %w", schema.Name, err)
	}
	return nil
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	if s, ok := compiled.Load(schema.Name); ok {
		return s.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so Go literals ([]string, int) become the
	// generic values the compiler walks.
	b, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	def, err := jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
	if err != nil {
		return nil, err
	}

	url := "schema://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled.Store(schema.Name, s)
	return s, nil
}

var fence = regexp.MustCompile("(?s)^```[A-Za-z]*[ \t]*\n?(.*?)\n?```$")

// stripCodeFence unwraps a markdown code fence some models put around JSON
// even when asked for a JSON MIME type.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if m := fence.FindStringSubmatch(t); m != nil {
		return strings.TrimSpace(m[1])
	}
	return t
}

// decodeContent turns backend text into Response content. Without a schema
// the text passes through untouched; with one it is unfenced and validated.
func decodeContent(text string, schema *Schema) (json.RawMessage, error) {
	if schema == nil {
		return json.RawMessage(text), nil
	}
	clean := stripCodeFence(text)
	if clean == "" {
		return nil, &ErrInvalidResponse{Err: ErrEmptyResponse}
	}
	content := json.RawMessage(clean)
	if err := validateResponse(schema, content); err != nil {
		return nil, err
	}
	return content, nil
}

// decodeAnswer is decodeContent for a finished backend call. A schema answer
// cut off at the token limit is reported as truncated, not as malformed.
func decodeAnswer(text string, stop StopReason, schema *Schema) (json.RawMessage, error) {
	if stop == StopMaxTokens && schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: json.RawMessage(text)}
	}
	return decodeContent(text, schema)
}
