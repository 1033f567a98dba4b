package token

import "strings"

const bearerPrefix = "Bearer "

// FromBearer extracts the token from an Authorization header value of the
// form "Bearer <token>". ok is false for any other shape.
func FromBearer(header string) (raw string, ok bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	raw = strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return "", false
	}
	return raw, true
}
