package model

import (
	"github.com/secmon-lab/checkin/pkg/domain/types"
)

// RelayKind discriminates messages posted back by the callback view
type RelayKind string

const (
	RelayKindSuccess RelayKind = "success"
	RelayKindError   RelayKind = "error"
)

// RelayMessage is what the callback view delivers to the waiting coordinator
type RelayMessage struct {
	Origin string    `json:"-"`
	Kind   RelayKind `json:"kind"`
	Code   string    `json:"code,omitempty"`
	Error  string    `json:"error,omitempty"`
	State  string    `json:"-"`
}

// SlackGrant is the result of a successful code exchange
type SlackGrant struct {
	AccessToken string `json:"token" masq:"secret"`
	UserID      string `json:"userId"`
	TeamID      string `json:"teamId"`
	TeamName    string `json:"teamName"`
}

// SlackIdentity is the connected user's profile
type SlackIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// DisplayName returns the name to show, falling back to "User <id>"
func (i *SlackIdentity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return "User " + i.ID
}

// OAuthSession tracks one authorization attempt. It lives only in memory.
type OAuthSession struct {
	State       types.SessionState
	AccessToken string `masq:"secret"`
	UserID      string
	TeamID      string
	TeamName    string
	Failure     error
}

// NewOAuthSession returns an Idle session
func NewOAuthSession() *OAuthSession {
	return &OAuthSession{State: types.SessionStateIdle}
}

// Transition moves the session to next and reports whether the move was legal
func (s *OAuthSession) Transition(next types.SessionState) bool {
	if !s.State.CanTransitionTo(next) {
		return false
	}
	s.State = next
	return true
}

// Fail moves the session to Failed with err
func (s *OAuthSession) Fail(err error) {
	if s.State.IsTerminal() {
		return
	}
	s.State = types.SessionStateFailed
	s.Failure = err
}

// Authenticate stores grant and moves the session to Authenticated
func (s *OAuthSession) Authenticate(grant *SlackGrant) bool {
	if !s.Transition(types.SessionStateAuthenticated) {
		return false
	}
	s.AccessToken = grant.AccessToken
	s.UserID = grant.UserID
	s.TeamID = grant.TeamID
	s.TeamName = grant.TeamName
	return true
}
