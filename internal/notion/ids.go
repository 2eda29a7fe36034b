package notion

import (
	"regexp"
	"strings"
)

var (
	dashedUUID = regexp.MustCompile(`[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}`)
	exactUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)
	hexAtEnd   = regexp.MustCompile(`([a-f0-9]{32})(?:\?|#|$)`)
	hexSuffix  = regexp.MustCompile(`([a-f0-9]{32})$`)
	exactHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// NormalizeID extracts a dashed UUID from a Notion URL, a dashed UUID, or
// 32 raw hex characters. Anything else is returned unchanged.
func NormalizeID(idOrURL string) string {
	if idOrURL == "" {
		return idOrURL
	}

	if strings.Contains(idOrURL, "notion.so") || strings.Contains(idOrURL, "notion.site") {
		clean := idOrURL
		if i := strings.IndexAny(clean, "?#"); i >= 0 {
			clean = clean[:i]
		}
		if m := dashedUUID.FindString(clean); m != "" {
			return m
		}
		if m := hexAtEnd.FindStringSubmatch(idOrURL); m != nil {
			return formatUUID(m[1])
		}
		parts := strings.Split(strings.TrimRight(clean, "/"), "/")
		if m := hexSuffix.FindStringSubmatch(parts[len(parts)-1]); m != nil {
			return formatUUID(m[1])
		}
	}

	if exactUUID.MatchString(idOrURL) {
		return idOrURL
	}

	raw := strings.ReplaceAll(idOrURL, "-", "")
	if exactHex32.MatchString(raw) {
		return formatUUID(raw)
	}

	return idOrURL
}

func formatUUID(h string) string {
	return h[:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:]
}
