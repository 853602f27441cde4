// Package identity turns profile URLs into canonical usernames.
package identity

import (
	"regexp"
	"strings"

	"persona-agent/internal/core/domain"
)

var profilePattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?reddit\.com/user/([A-Za-z0-9_-]+)/?(?:\?.*)?$`)

// ExtractUsername returns the username in a reddit profile URL. Scheme and
// "www." are optional; a trailing slash and query string are ignored.
func ExtractUsername(raw string) (string, error) {
	m := profilePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", &domain.InvalidIdentifierError{Input: raw}
	}
	return m[1], nil
}
