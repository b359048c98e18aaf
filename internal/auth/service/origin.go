package service

import (
	"context"
	"strings"
)

// Config keys the origin policy reads. Both hold comma-separated lists.
const (
	ConfigKeyTrustedOrigins = "trusted_origins"
	ConfigKeyOriginPatterns = "trusted_origin_patterns"
)

// fallbackOrigins keeps first-party clients working when the config store
// cannot be read at all: neither rejecting all traffic nor allowing all
// traffic is acceptable during an outage.
var fallbackOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
	"https://localhost:3000",
}

const fallbackSuffix = ".eatzy.com"

// OriginPolicy decides whether a request origin is authorized, using the
// config cache for the trusted-origin and pattern lists.
type OriginPolicy struct {
	Config *ConfigService
}

// IsAllowed reports whether origin is trusted. Matching order: exact
// membership in the trusted-origin list first, then each pattern in
// configured order. A pattern starting with "." matches as a domain suffix
// (".example.com" matches "https://sub.example.com" but NOT the bare apex
// "https://example.com" — the apex needs its own trusted-origin entry); a
// pattern starting with a scheme requires exact equality; anything else
// matches by substring containment. First match wins.
func (p *OriginPolicy) IsAllowed(ctx context.Context, origin string) bool {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return false
	}

	origins, patterns, err := p.rules(ctx)
	if err != nil {
		return fallbackAllowed(origin)
	}

	for _, o := range origins {
		if origin == o {
			return true
		}
	}

	for _, pattern := range patterns {
		switch {
		case strings.HasPrefix(pattern, "."):
			if strings.HasSuffix(origin, pattern) {
				return true
			}
		case strings.HasPrefix(pattern, "http://"), strings.HasPrefix(pattern, "https://"):
			if origin == pattern {
				return true
			}
		default:
			if strings.Contains(origin, pattern) {
				return true
			}
		}
	}

	return false
}

// rules loads both lists. A key that simply is not configured counts as an
// empty list; only a failing backing store triggers the hardcoded fallback.
func (p *OriginPolicy) rules(ctx context.Context) (origins, patterns []string, err error) {
	rawOrigins, err := p.Config.GetOrDefault(ctx, ConfigKeyTrustedOrigins, "")
	if err != nil {
		return nil, nil, err
	}
	rawPatterns, err := p.Config.GetOrDefault(ctx, ConfigKeyOriginPatterns, "")
	if err != nil {
		return nil, nil, err
	}
	return splitList(rawOrigins), splitList(rawPatterns), nil
}

func fallbackAllowed(origin string) bool {
	for _, o := range fallbackOrigins {
		if origin == o {
			return true
		}
	}
	return strings.HasSuffix(origin, fallbackSuffix)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
