package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/notionctl/internal/dispatch"
)

// Output formats for --output.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// errorReport is written to stderr when a tool fails.
type errorReport struct {
	Error   bool           `json:"error" yaml:"error"`
	Kind    string         `json:"kind" yaml:"kind"`
	Message string         `json:"message" yaml:"message"`
	Detail  map[string]any `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// checkFormat rejects an --output value render cannot produce.
func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML, "":
		return nil
	default:
		return argumentError("unsupported output format %q (use json or yaml)", format)
	}
}

// render writes v in the requested format.
func render(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return argumentError("unsupported output format %q (use json or yaml)", format)
	}
}

// emit prints a dispatch result. Success goes to stdout; an error report
// goes to stderr and the returned ExitError carries the exit code.
func emit(stdout, stderr io.Writer, format string, env dispatch.Envelope) error {
	p, failed := env.AsError()
	if !failed {
		return render(stdout, format, env.Payload)
	}

	report := errorReport{
		Error:   true,
		Kind:    string(p.Kind),
		Message: p.Message,
		Detail:  p.Detail,
	}
	if err := render(stderr, format, report); err != nil {
		return err
	}
	exitErr := exitError(exitCodeFor(p.Kind), p.Kind, "%s: %s", p.Kind, p.Message)
	exitErr.Reported = true
	return exitErr
}
