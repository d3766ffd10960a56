package types

import "fmt"

// Location is where the user works from
type Location string

const (
	LocationOffice Location = "Office"
	LocationHome   Location = "Home"
)

// AllLocations returns all valid locations
func AllLocations() []Location {
	return []Location{LocationOffice, LocationHome}
}

// IsValid checks if the location is valid
func (l Location) IsValid() bool {
	switch l {
	case LocationOffice, LocationHome:
		return true
	default:
		return false
	}
}

func (l Location) String() string {
	return string(l)
}

// ParseLocation parses a string into a Location
func ParseLocation(s string) (Location, error) {
	l := Location(s)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid location: %s", s)
	}
	return l, nil
}
