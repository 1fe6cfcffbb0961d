package extraction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/llm"
)

// ReplyKind tags how a model reply was understood
type ReplyKind int

const (
	ReplyFallback ReplyKind = iota
	ReplyParsed
)

func (k ReplyKind) String() string {
	if k == ReplyParsed {
		return "parsed"
	}
	return "fallback"
}

// Reply is the result of parsing a model reply: either a typed RawCandidate
// or a fallback marker carrying the reason the reply was rejected.
type Reply struct {
	Kind   ReplyKind
	Raw    RawCandidate
	Reason error
}

var (
	ErrNoJSONObject   = errors.New("no JSON object in reply")
	ErrMalformedJSON  = errors.New("reply JSON is malformed")
	ErrSchemaMismatch = errors.New("reply JSON does not match schema")
)

var nullableNumber = map[string]any{"type": []any{"number", "string", "null"}}

var candidateSchema = mustCompile("candidate.json", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"transactionType": map[string]any{"type": []any{"string", "null"}},
		"items": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":       map[string]any{"type": []any{"string", "null"}},
					"quantity":   nullableNumber,
					"unit":       map[string]any{"type": []any{"string", "null"}},
					"unitPrice":  nullableNumber,
					"totalPrice": nullableNumber,
				},
			},
		},
		"totalAmount":   nullableNumber,
		"customerName":  map[string]any{"type": []any{"string", "null"}},
		"date":          map[string]any{"type": []any{"string", "null"}},
		"notes":         map[string]any{"type": []any{"string", "null"}},
		"paymentStatus": map[string]any{"type": []any{"string", "null"}},
		"confidence":    nullableNumber,
	},
	"required": []any{"transactionType"},
})

func mustCompile(name string, schemaMap map[string]any) *jsonschema.Schema {
	schema, err := llm.CompileSchema(name, schemaMap)
	if err != nil {
		panic(fmt.Sprintf("extraction: schema %s: %v", name, err))
	}
	return schema
}

// ParseReply locates the first balanced JSON object in a model reply,
// validates it and decodes it. Any failure yields a ReplyFallback.
func ParseReply(reply string) Reply {
	var raw RawCandidate
	if err := decodeReply(reply, candidateSchema, &raw); err != nil {
		return Reply{Kind: ReplyFallback, Reason: err}
	}
	return Reply{Kind: ReplyParsed, Raw: raw}
}

// decodeReply runs span location, lenient decoding, schema validation and
// typed decoding in that order.
func decodeReply(reply string, schema *jsonschema.Schema, dst any) error {
	object, ok := firstJSONObject(reply)
	if !ok {
		return ErrNoJSONObject
	}

	canonical, err := canonicalJSON(object)
	if err != nil {
		return err
	}

	if err := llm.ValidateJSON(schema, canonical); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	if err := json.Unmarshal(canonical, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return nil
}

// canonicalJSON accepts strict JSON, and JSON5 as a second chance for
// replies with trailing commas, single quotes or comments.
func canonicalJSON(object string) ([]byte, error) {
	if json.Valid([]byte(object)) {
		return []byte(object), nil
	}
	var v any
	if err := json5.Unmarshal([]byte(object), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return b, nil
}

// firstJSONObject returns the first balanced {...} span, skipping braces
// that appear inside string literals.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	var quote byte
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '\'':
			if start >= 0 {
				quote = ch
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
