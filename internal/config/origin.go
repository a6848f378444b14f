package config

import "strings"

// IsOriginAllowed checks a WebSocket Origin header against the bridge config.
// An empty allow-list enforces same-origin; "*" allows everything.
func (c *BridgeConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func isSameOrigin(origin, requestHost string) bool {
	// Non-browser hosts (the game runtime's node process) send no Origin.
	if origin == "" {
		return true
	}
	host := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		host = origin[idx+3:]
	}
	return strings.TrimSuffix(host, "/") == requestHost
}
