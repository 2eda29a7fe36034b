package dispatch

import (
	"bytes"
	"encoding/json"

	"github.com/fyrsmithlabs/notionctl/internal/failure"
)

// DecodeArguments parses a raw arguments object as sent by the server
// shells. An empty or null document is an empty argument set. Numbers are
// kept as json.Number so integers survive unchanged.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, failure.Wrap(failure.InvalidArgument, err, "tool arguments must be a JSON object").
			With("field", "arguments").
			With("expected", "a JSON object")
	}
	return args, nil
}
