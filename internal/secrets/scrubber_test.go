package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notionToken = "ntn_1234567890abcdefghijABCDEFGHIJ"

func TestScrub_NotionTokens(t *testing.T) {
	s := Default()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ntn prefix", "token " + notionToken + " rejected", "token [REDACTED] rejected"},
		{"legacy secret prefix", "secret_abcdefghijklmnopqrstuvwxyz0123", "[REDACTED]"},
		{"bearer header", "Authorization: Bearer abc.def-ghi", "Authorization: [REDACTED]"},
		{"short prefix not a token", "secret_sauce", "secret_sauce"},
		{"plain text", "object_not_found", "object_not_found"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.String(tt.input))
		})
	}
}

func TestScrub_Literal(t *testing.T) {
	s := Default()
	s.AddLiteral("custom-token-value-123")
	s.AddLiteral("short")

	res := s.Scrub("got custom-token-value-123 twice custom-token-value-123; short stays")
	assert.Equal(t, "got [REDACTED] twice [REDACTED]; short stays", res.Scrubbed)
	require.Len(t, res.Findings, 2)
	assert.Equal(t, "literal", res.Findings[0].RuleID)
}

func TestScrub_OverlappingMatchesMerge(t *testing.T) {
	s := Default()
	s.AddLiteral(notionToken)

	res := s.Scrub("Bearer " + notionToken)
	assert.Equal(t, "[REDACTED]", res.Scrubbed)
	assert.True(t, res.HasFindings())
}

func TestScrub_Value(t *testing.T) {
	s := Default()
	in := map[string]any{
		"message": "bad " + notionToken,
		"status":  401,
		"nested":  []any{"ok", map[string]any{"k": notionToken}},
	}

	out := s.Value(in).(map[string]any)
	assert.Equal(t, "bad [REDACTED]", out["message"])
	assert.Equal(t, 401, out["status"])
	nested := out["nested"].([]any)
	assert.Equal(t, "ok", nested[0])
	assert.Equal(t, "[REDACTED]", nested[1].(map[string]any)["k"])
	assert.Equal(t, "bad "+notionToken, in["message"])
}

func TestNew_InvalidRule(t *testing.T) {
	_, err := New(Rule{ID: "x", Pattern: "("})
	assert.Error(t, err)

	_, err = New(Rule{Pattern: "a"})
	assert.Error(t, err)
}

func TestNilScrubber(t *testing.T) {
	var s *Scrubber
	assert.Equal(t, "text", s.String("text"))
}
