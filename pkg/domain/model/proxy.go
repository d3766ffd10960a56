package model

// Proxy wire format shared by the HTTP handlers and the CLI client

// Fixed response strings
const (
	MsgMissingMessageParams = "Missing required parameters: token, channelId, and text are required"
	MsgMissingOAuthParams   = "Missing required parameters: code and redirectUri are required"
	MsgMissingToken         = "Missing required parameter: token"
	MsgServerConfig         = "Server configuration error: Slack credentials not configured"
	MsgMethodNotAllowed     = "Method not allowed"
	MsgMessageSent          = "Message sent to Slack successfully!"
	MsgInternalError        = "Internal server error"
	MsgInvalidJSON          = "Invalid JSON body"
)

// MessageRequest is the body of POST /api/slack/message
type MessageRequest struct {
	Token     string `json:"token" masq:"secret"`
	ChannelID string `json:"channelId"`
	Text      string `json:"text"`
	ThreadTS  string `json:"threadTs,omitempty"`
}

// OAuthRequest is the body of POST /api/slack/oauth
type OAuthRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

// TokenRequest is the body of POST /api/slack/test and /api/slack/userinfo
type TokenRequest struct {
	Token string `json:"token" masq:"secret"`
}

// ProxyResponse is the union of every proxy response body
type ProxyResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	// message
	TS string `json:"ts,omitempty"`

	// oauth
	Token    string `json:"token,omitempty" masq:"secret"`
	UserID   string `json:"userId,omitempty"`
	TeamID   string `json:"teamId,omitempty"`
	TeamName string `json:"teamName,omitempty"`

	// userinfo
	User *SlackIdentity `json:"user,omitempty"`
}
