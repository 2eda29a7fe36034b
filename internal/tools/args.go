package tools

import (
	"context"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/notion"
)

// bind adapts a handler taking a typed parameter struct. Fields are matched
// by their json tag.
func bind[P any](fn func(ctx context.Context, env *Env, p P) (any, error)) Handler {
	return func(ctx context.Context, env *Env, args map[string]any) (any, error) {
		var p P
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return fn(ctx, env, p)
	}
}

func decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return failure.Wrap(failure.InternalError, err, "build argument decoder")
	}
	if err := dec.Decode(args); err != nil {
		return failure.Wrap(failure.InternalError, err, "decode arguments")
	}
	return nil
}

// objectArg returns v as a JSON object, or nil when v is absent.
func objectArg(field string, v any) (notion.Object, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, failure.Invalid(field, "a JSON object")
	}
	out := make(notion.Object, len(obj))
	for k, val := range obj {
		out[k] = val
	}
	return out, nil
}

// arrayArg returns v as a JSON array, or nil when v is absent.
func arrayArg(field string, v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, failure.Invalid(field, "a JSON array")
	}
	return arr, nil
}

// missingOneOf reports that at least one of fields must be supplied.
func missingOneOf(fields ...string) *failure.Error {
	return &failure.Error{
		Kind:    failure.MissingArgument,
		Message: "provide one of: " + strings.Join(fields, ", "),
		Detail:  map[string]any{"field": fields[0], "one_of": fields},
	}
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func emojiIcon(emoji string) notion.Object {
	return notion.Object{"type": "emoji", "emoji": emoji}
}

func externalCover(url string) notion.Object {
	return notion.Object{"type": "external", "external": notion.Object{"url": url}}
}
