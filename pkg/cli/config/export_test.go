package config

import (
	"io"
	"log/slog"
)

// NewLoggerForTest builds a logger writing to w
func NewLoggerForTest(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	return newLogger(w, level, format)
}

func NewLoggerConfigForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewSlackAppForTest(clientID, clientSecret string) *SlackApp {
	return &SlackApp{clientID: clientID, clientSecret: clientSecret}
}

func NewSlackClientForTest(proxyURL, clientID string, callbackPort int, redirectURI string) *SlackClient {
	return &SlackClient{
		proxyURL:     proxyURL,
		clientID:     clientID,
		callbackPort: callbackPort,
		redirectURI:  redirectURI,
	}
}

func NewStoreForTest(backend, path string) *Store {
	return &Store{backend: backend, path: path}
}

func NewGmailForTest(accessToken, clientID, clientSecret, refreshToken string) *Gmail {
	return &Gmail{
		accessToken:  accessToken,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
	}
}

func NewProfileForTest(path string) *Profile {
	return &Profile{path: path}
}
