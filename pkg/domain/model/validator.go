package model

import (
	"regexp"
	"strings"
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	channelIDPattern = regexp.MustCompile(`^[CD][A-Z0-9]{8,}$`)
)

// IsValidEmail reports whether s looks like a deliverable address
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidChannelID reports whether s is a public channel ("C...") or direct message ("D...") ID
func IsValidChannelID(s string) bool {
	return channelIDPattern.MatchString(s)
}

// IsValidSlackToken reports whether s has a user or bot token prefix
func IsValidSlackToken(s string) bool {
	return strings.HasPrefix(s, "xoxp-") || strings.HasPrefix(s, "xoxb-")
}
