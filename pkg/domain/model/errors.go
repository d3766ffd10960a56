package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Proxy and handshake errors
var (
	ErrBadRequest       = goerr.New("bad request")
	ErrMethodNotAllowed = goerr.New("method not allowed")
	ErrUpstreamRejected = goerr.New("upstream rejected request")
	ErrServerConfig     = goerr.New("server configuration error")
	ErrTransportFailure = goerr.New("transport failure")
	ErrUserCancelled    = goerr.New("user cancelled authorization")
)

// Client side errors
var (
	ErrSlackUnavailable = goerr.New("slack is not connected")
	ErrEmailUnavailable = goerr.New("email is not configured")
	ErrSendInProgress   = goerr.New("send already in progress")
	ErrInvalidChannelID = goerr.New("invalid slack channel ID")
	ErrInvalidEmail     = goerr.New("invalid email address")
	ErrInvalidLocation  = goerr.New("invalid location")
)

// Context keys for error values
const (
	UpstreamErrorKey = "upstream_error"
	StatusCodeKey    = "status_code"
	MessageTypeKey   = "message_type"
	ChannelIDKey     = "channel_id"
	EmailKey         = "email"
)

// UpstreamMessage returns the upstream error string attached to err with
// UpstreamErrorKey, or "" when none is attached.
func UpstreamMessage(err error) string {
	for err != nil {
		ge := goerr.Unwrap(err)
		if ge == nil {
			return ""
		}
		if v, ok := ge.Values()[UpstreamErrorKey].(string); ok && v != "" {
			return v
		}
		err = errors.Unwrap(ge)
	}
	return ""
}
