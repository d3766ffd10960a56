package types

import "fmt"

// Destination is a single delivery channel recorded in history
type Destination string

const (
	DestinationEmail Destination = "email"
	DestinationChat  Destination = "chat"
)

// IsValid checks if the destination is valid
func (d Destination) IsValid() bool {
	return d == DestinationEmail || d == DestinationChat
}

func (d Destination) String() string {
	return string(d)
}

// Target selects which destinations a send goes to
type Target string

const (
	TargetEmail Target = "email"
	TargetSlack Target = "slack"
	TargetBoth  Target = "both"
)

// Destinations expands the target into the destinations it covers
func (t Target) Destinations() []Destination {
	switch t {
	case TargetEmail:
		return []Destination{DestinationEmail}
	case TargetSlack:
		return []Destination{DestinationChat}
	case TargetBoth:
		return []Destination{DestinationEmail, DestinationChat}
	default:
		return nil
	}
}

// Includes reports whether d is one of the target's destinations
func (t Target) Includes(d Destination) bool {
	for _, x := range t.Destinations() {
		if x == d {
			return true
		}
	}
	return false
}

// IsValid checks if the target is valid
func (t Target) IsValid() bool {
	return len(t.Destinations()) > 0
}

func (t Target) String() string {
	return string(t)
}

// ParseTarget parses a string into a Target
func ParseTarget(s string) (Target, error) {
	t := Target(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid target: %s", s)
	}
	return t, nil
}
