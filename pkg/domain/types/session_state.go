package types

// SessionState is the state of one OAuth authorization attempt
type SessionState string

const (
	SessionStateIdle             SessionState = "idle"
	SessionStateAwaitingRedirect SessionState = "awaiting_redirect"
	SessionStateExchangingCode   SessionState = "exchanging_code"
	SessionStateAuthenticated    SessionState = "authenticated"
	SessionStateFailed           SessionState = "failed"
)

// IsTerminal reports whether no further transition can happen
func (s SessionState) IsTerminal() bool {
	return s == SessionStateAuthenticated || s == SessionStateFailed
}

// CanTransitionTo reports whether next is a legal successor of s
func (s SessionState) CanTransitionTo(next SessionState) bool {
	switch s {
	case SessionStateIdle:
		return next == SessionStateAwaitingRedirect || next == SessionStateFailed
	case SessionStateAwaitingRedirect:
		return next == SessionStateExchangingCode || next == SessionStateFailed
	case SessionStateExchangingCode:
		return next == SessionStateAuthenticated || next == SessionStateFailed
	default:
		return false
	}
}

func (s SessionState) String() string {
	return string(s)
}
