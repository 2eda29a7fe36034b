package secrets

// Rule defines a secret detection pattern.
type Rule struct {
	ID          string
	Description string
	Pattern     string
}

// DefaultRules returns the patterns applied by Default.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "notion-integration-token",
			Description: "Notion internal integration token",
			Pattern:     `\b(?:secret|ntn)_[A-Za-z0-9]{20,}\b`,
		},
		{
			ID:          "authorization-header",
			Description: "Authorization header value",
			Pattern:     `(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`,
		},
		{
			ID:          "generic-api-key",
			Description: "Generic API key assignment",
			Pattern:     `(?i)(?:api[_-]?key|token)\s*[:=]\s*['"]?[A-Za-z0-9_\-]{16,}['"]?`,
		},
		{
			ID:          "private-key",
			Description: "PEM private key header",
			Pattern:     `-----BEGIN (?:RSA |EC |OPENSSH )?PRIVATE KEY-----`,
		},
	}
}
