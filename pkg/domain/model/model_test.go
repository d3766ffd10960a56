package model_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/domain/types"
)

func TestDefaultSettings(t *testing.T) {
	s := model.DefaultSettings()
	gt.Value(t, s.DefaultLocation).Equal(types.LocationOffice)
	gt.Value(t, s.SavedReasons).Equal([]string{"Not feeling well", "Doctor appointment", "Personal work"})
	gt.Bool(t, s.HasSlack()).False()
	gt.Bool(t, s.HasEmail()).False()

	// defaults must not share the package slice
	s.SavedReasons[0] = "changed"
	gt.Value(t, model.DefaultSettings().SavedReasons[0]).Equal("Not feeling well")
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *model.Settings)
		wantErr error
	}{
		{"defaults", func(s *model.Settings) {}, nil},
		{"valid email", func(s *model.Settings) { s.AttendanceEmail = "hr@example.com" }, nil},
		{"invalid email", func(s *model.Settings) { s.AttendanceEmail = "hr@example" }, model.ErrInvalidEmail},
		{"valid channel", func(s *model.Settings) { s.SlackChannelID = "C01ABCDEF23" }, nil},
		{"valid DM channel", func(s *model.Settings) { s.SlackChannelID = "D12345678" }, nil},
		{"lowercase channel", func(s *model.Settings) { s.SlackChannelID = "c01abcdef23" }, model.ErrInvalidChannelID},
		{"short channel", func(s *model.Settings) { s.SlackChannelID = "C1234567" }, model.ErrInvalidChannelID},
		{"group prefix", func(s *model.Settings) { s.SlackChannelID = "G01ABCDEF23" }, model.ErrInvalidChannelID},
		{"bad location", func(s *model.Settings) { s.DefaultLocation = "Cafe" }, model.ErrInvalidLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := model.DefaultSettings()
			tt.modify(s)
			err := s.Validate()
			if tt.wantErr == nil {
				gt.NoError(t, err)
				return
			}
			gt.Bool(t, errors.Is(err, tt.wantErr)).True()
		})
	}
}

func TestSettings_ClearSlack(t *testing.T) {
	s := &model.Settings{
		AttendanceEmail:  "hr@example.com",
		SlackAccessToken: "xoxp-1",
		SlackChannelID:   "C01ABCDEF23",
		SlackUserID:      "U1",
		SlackUserName:    "alice",
		SlackTeamID:      "T1",
		SlackTeamName:    "Acme",
		DefaultLocation:  types.LocationHome,
	}
	s.ClearSlack()

	gt.Value(t, *s).Equal(model.Settings{
		AttendanceEmail: "hr@example.com",
		DefaultLocation: types.LocationHome,
	})
}

func TestValidators(t *testing.T) {
	gt.Bool(t, model.IsValidSlackToken("xoxp-123")).True()
	gt.Bool(t, model.IsValidSlackToken("xoxb-123")).True()
	gt.Bool(t, model.IsValidSlackToken("xoxa-123")).False()
	gt.Bool(t, model.IsValidEmail("a b@example.com")).False()
}

func TestPrependHistory(t *testing.T) {
	var history []*model.HistoryEntry
	for i := 0; i < model.HistoryLimit+5; i++ {
		history = model.PrependHistory(history, &model.HistoryEntry{ID: fmt.Sprintf("%03d", i)})
	}

	gt.Array(t, history).Length(model.HistoryLimit)
	gt.Value(t, history[0].ID).Equal("104")
	// the five oldest were evicted
	gt.Value(t, history[model.HistoryLimit-1].ID).Equal("005")
}

func TestNewHistoryID(t *testing.T) {
	a := model.NewHistoryID()
	b := model.NewHistoryID()
	gt.Value(t, a).NotEqual(b)
	// v7 IDs are time ordered
	gt.Bool(t, a < b).True()
}

func TestMessage(t *testing.T) {
	at := time.Date(2026, time.January, 1, 10, 30, 0, 0, time.Local)

	t.Run("office ignores reason", func(t *testing.T) {
		msg := model.NewMessage(types.MessageTypeCheckIn, types.LocationOffice, "Doctor appointment", "", at)
		gt.Value(t, msg.Subject()).Equal("Check-In Thursday January 1, 2026 at 10:30 AM - From Office")
		gt.Value(t, msg.ChatText()).Equal(msg.Subject())
	})

	t.Run("home adds reason line", func(t *testing.T) {
		msg := model.NewMessage(types.MessageTypeCheckIn, types.LocationHome, "  Doctor appointment ", "", at)
		gt.Value(t, msg.Subject()).Equal("Check-In Thursday January 1, 2026 at 10:30 AM - From Home\nReason: Doctor appointment")
		gt.Value(t, msg.EmailSubject()).Equal("Check-In Thursday January 1, 2026 at 10:30 AM - From Home - Reason: Doctor appointment")
	})

	t.Run("home without reason", func(t *testing.T) {
		msg := model.NewMessage(types.MessageTypeCheckOut, types.LocationHome, "   ", "", at.Add(8*time.Hour))
		gt.Value(t, msg.Subject()).Equal("Check-Out Thursday January 1, 2026 at 6:30 PM - From Home")
	})

	t.Run("additional message", func(t *testing.T) {
		msg := model.NewMessage(types.MessageTypeCheckOut, types.LocationOffice, "", "Leaving early", at)
		gt.Value(t, msg.ChatText()).Equal(msg.Subject() + "\n\nLeaving early")
		gt.Value(t, msg.EmailBody()).Equal("Leaving early")
	})
}

func TestUpstreamMessage(t *testing.T) {
	err := goerr.Wrap(model.ErrUpstreamRejected, "exchange failed", goerr.V(model.UpstreamErrorKey, "invalid_code"))
	gt.Value(t, model.UpstreamMessage(err)).Equal("invalid_code")

	wrapped := goerr.Wrap(err, "outer")
	gt.Value(t, model.UpstreamMessage(wrapped)).Equal("invalid_code")
	gt.Bool(t, errors.Is(wrapped, model.ErrUpstreamRejected)).True()

	gt.Value(t, model.UpstreamMessage(errors.New("plain"))).Equal("")
	gt.Value(t, model.UpstreamMessage(nil)).Equal("")
}

func TestOAuthSession(t *testing.T) {
	s := model.NewOAuthSession()
	gt.Bool(t, s.Transition(types.SessionStateExchangingCode)).False()
	gt.Bool(t, s.Transition(types.SessionStateAwaitingRedirect)).True()
	gt.Bool(t, s.Transition(types.SessionStateExchangingCode)).True()
	gt.Bool(t, s.Authenticate(&model.SlackGrant{AccessToken: "xoxp-1", UserID: "U1", TeamID: "T1", TeamName: "Acme"})).True()
	gt.Value(t, s.State).Equal(types.SessionStateAuthenticated)
	gt.Value(t, s.TeamName).Equal("Acme")

	s.Fail(model.ErrUserCancelled)
	gt.Value(t, s.State).Equal(types.SessionStateAuthenticated)
	gt.Value(t, s.Failure).Nil()
}

func TestSlackIdentity_DisplayName(t *testing.T) {
	gt.Value(t, (&model.SlackIdentity{ID: "U1", Name: "alice"}).DisplayName()).Equal("alice")
	gt.Value(t, (&model.SlackIdentity{ID: "U1"}).DisplayName()).Equal("User U1")
}
