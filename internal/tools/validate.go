package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fyrsmithlabs/notionctl/internal/failure"
)

// Validate checks args against the descriptor and returns a new map holding
// only declared fields, coerced to their kind, with defaults applied.
// Undeclared arguments are dropped. A nil or empty-string value counts as
// absent.
func (d Descriptor) Validate(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		raw, ok := args[f.Name]
		if !ok || raw == nil || raw == "" {
			if f.Required {
				return nil, failure.Missing(f.Name)
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}

		v, err := f.coerce(raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

// Expected describes the accepted shape of the field for error messages.
func (f Field) Expected() string {
	switch f.Kind {
	case KindEnum:
		return "one of " + strings.Join(f.Enum, ", ")
	case KindInteger:
		return "a non-negative integer"
	case KindBoolean:
		return "a boolean"
	case KindObject:
		return "a JSON object or array"
	default:
		return "a string"
	}
}

func (f Field) coerce(v any) (any, error) {
	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, f.invalid(nil)
		}
		return s, nil
	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, f.invalid(nil)
		}
		allowed := make([]any, len(f.Enum))
		for i, e := range f.Enum {
			allowed[i] = e
		}
		if err := validation.Validate(s, validation.In(allowed...)); err != nil {
			return nil, f.invalid(err)
		}
		return s, nil
	case KindInteger:
		return f.toInt(v)
	case KindBoolean:
		return f.toBool(v)
	case KindObject:
		return f.toJSON(v)
	}
	return nil, failure.New(failure.InternalError, "field %q has unsupported kind %q", f.Name, f.Kind)
}

func (f Field) invalid(cause error) *failure.Error {
	e := failure.Invalid(f.Name, f.Expected())
	e.Cause = cause
	return e
}

func (f Field) toInt(v any) (int, error) {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int32:
		n = int(x)
	case int64:
		n = int(x)
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, f.invalid(nil)
		}
		n = int(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, f.invalid(err)
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, f.invalid(err)
		}
		n = i
	default:
		return 0, f.invalid(nil)
	}
	if err := validation.Validate(n, validation.Min(0)); err != nil {
		return 0, f.invalid(err)
	}
	return n, nil
}

func (f Field) toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, f.invalid(err)
		}
		return b, nil
	}
	return false, f.invalid(nil)
}

// toJSON accepts decoded objects and arrays as they are and parses strings
// as JSON text. Other values are normalized through a JSON round trip.
func (f Field) toJSON(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any, []any:
		return x, nil
	case string:
		return f.parseJSON([]byte(x))
	case json.RawMessage:
		return f.parseJSON(x)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, f.invalid(err)
	}
	return f.parseJSON(data)
}

func (f Field) parseJSON(data []byte) (any, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, f.invalid(err)
	}
	switch parsed.(type) {
	case map[string]any, []any:
		return parsed, nil
	}
	return nil, f.invalid(nil)
}
