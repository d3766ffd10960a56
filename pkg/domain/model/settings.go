package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/types"
)

// DefaultReasons are the canned reasons offered for working from home
var DefaultReasons = []string{
	"Not feeling well",
	"Doctor appointment",
	"Personal work",
}

// Settings is the singleton user configuration
type Settings struct {
	AttendanceEmail  string         `json:"attendanceEmail"`
	SlackAccessToken string         `json:"slackAccessToken,omitempty" masq:"secret"`
	SlackChannelID   string         `json:"slackChannelId,omitempty"`
	DefaultLocation  types.Location `json:"defaultLocation"`
	SavedReasons     []string       `json:"savedReasons"`

	// Display fields filled after a successful OAuth handshake
	SlackUserID   string `json:"slackUserId,omitempty"`
	SlackUserName string `json:"slackUserName,omitempty"`
	SlackTeamID   string `json:"slackTeamId,omitempty"`
	SlackTeamName string `json:"slackTeamName,omitempty"`
}

// DefaultSettings returns the settings used when nothing is stored yet
func DefaultSettings() *Settings {
	reasons := make([]string, len(DefaultReasons))
	copy(reasons, DefaultReasons)
	return &Settings{
		DefaultLocation: types.LocationOffice,
		SavedReasons:    reasons,
	}
}

// HasSlack reports whether chat operations are available
func (s *Settings) HasSlack() bool {
	return s.SlackAccessToken != ""
}

// HasEmail reports whether email operations are available
func (s *Settings) HasEmail() bool {
	return s.AttendanceEmail != ""
}

// ClearSlack drops the token and every field derived from the Slack connection
func (s *Settings) ClearSlack() {
	s.SlackAccessToken = ""
	s.SlackChannelID = ""
	s.SlackUserID = ""
	s.SlackUserName = ""
	s.SlackTeamID = ""
	s.SlackTeamName = ""
}

// Validate checks the user editable fields. Empty email and channel are allowed.
func (s *Settings) Validate() error {
	if s.AttendanceEmail != "" && !IsValidEmail(s.AttendanceEmail) {
		return goerr.Wrap(ErrInvalidEmail, "attendance email", goerr.V(EmailKey, s.AttendanceEmail))
	}
	if s.SlackChannelID != "" && !IsValidChannelID(s.SlackChannelID) {
		return goerr.Wrap(ErrInvalidChannelID, "slack channel", goerr.V(ChannelIDKey, s.SlackChannelID))
	}
	if !s.DefaultLocation.IsValid() {
		return goerr.Wrap(ErrInvalidLocation, "default location", goerr.V("location", s.DefaultLocation))
	}
	return nil
}
