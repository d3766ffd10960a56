package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/utils/errutil"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
)

func failure(msg string) *model.ProxyResponse {
	return &model.ProxyResponse{Success: false, Error: msg}
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusMethodNotAllowed, failure(model.MsgMethodNotAllowed))
}

// decodeBody reads a bounded JSON body into v. On failure a 400 has been written.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := s.readBody(w, r, v); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, failure(model.MsgInvalidJSON))
		return false
	}
	return true
}

// readBody decodes a bounded JSON body into v. An empty body decodes as all
// fields missing.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		logging.From(r.Context()).Warn("Invalid proxy request body", "error", err, "path", r.URL.Path)
		return err
	}
	return nil
}

// writeUpstreamError maps a Slack call failure to 400 (rejected) or 500 (transport)
func writeUpstreamError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, model.ErrUpstreamRejected) {
		msg := model.UpstreamMessage(err)
		if msg == "" {
			msg = fallback
		}
		logging.From(ctx).Warn("Slack rejected proxied request", "error", err.Error(), "upstream_error", msg)
		writeJSON(ctx, w, http.StatusBadRequest, failure(msg))
		return
	}

	errutil.Handle(ctx, err, "Slack proxy transport failure")
	writeJSON(ctx, w, http.StatusInternalServerError, failure(model.MsgInternalError))
}

// messageHandler forwards chat.postMessage
func (s *Server) messageHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.MessageRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Token == "" || req.ChannelID == "" || req.Text == "" {
		writeJSON(ctx, w, http.StatusBadRequest, failure(model.MsgMissingMessageParams))
		return
	}

	ts, err := s.slackService.PostMessage(ctx, req.Token, req.ChannelID, req.Text, req.ThreadTS)
	if err != nil {
		writeUpstreamError(ctx, w, err, "Failed to send Slack message")
		return
	}

	writeJSON(ctx, w, http.StatusOK, &model.ProxyResponse{
		Success: true,
		TS:      ts,
		Message: model.MsgMessageSent,
	})
}

// oauthHandler exchanges an authorization code using the server held client secret
func (s *Server) oauthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.OAuthRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" || req.RedirectURI == "" {
		writeJSON(ctx, w, http.StatusBadRequest, failure(model.MsgMissingOAuthParams))
		return
	}

	clientID, clientSecret := s.credentials()
	if clientID == "" || clientSecret == "" {
		errutil.Handle(ctx, goerr.Wrap(model.ErrServerConfig, "slack client credentials are not configured"),
			"OAuth exchange unavailable")
		writeJSON(ctx, w, http.StatusInternalServerError, failure(model.MsgServerConfig))
		return
	}

	grant, err := s.slackService.ExchangeCode(ctx, clientID, clientSecret, req.Code, req.RedirectURI)
	if err != nil {
		writeUpstreamError(ctx, w, err, "Failed to exchange code for token")
		return
	}

	writeJSON(ctx, w, http.StatusOK, &model.ProxyResponse{
		Success:  true,
		Token:    grant.AccessToken,
		UserID:   grant.UserID,
		TeamID:   grant.TeamID,
		TeamName: grant.TeamName,
	})
}

// testHandler answers whether a token is valid. Failures of any kind read as false.
func (s *Server) testHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.TokenRequest
	if err := s.readBody(w, r, &req); err != nil {
		writeJSON(ctx, w, http.StatusOK, &model.ProxyResponse{Success: false})
		return
	}
	if req.Token == "" {
		writeJSON(ctx, w, http.StatusBadRequest, failure(model.MsgMissingToken))
		return
	}

	ok, err := s.slackService.AuthTest(ctx, req.Token)
	if err != nil {
		logging.From(ctx).Warn("auth.test failed", "error", err.Error())
		ok = false
	}
	writeJSON(ctx, w, http.StatusOK, &model.ProxyResponse{Success: ok})
}

// userInfoHandler returns users.identity for the token in the body or Authorization header
func (s *Server) userInfoHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.TokenRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if auth := r.Header.Get("Authorization"); req.Token == "" && strings.HasPrefix(auth, "Bearer ") {
		req.Token = strings.TrimPrefix(auth, "Bearer ")
	}
	if req.Token == "" {
		writeJSON(ctx, w, http.StatusBadRequest, failure(model.MsgMissingToken))
		return
	}

	identity, err := s.slackService.UserIdentity(ctx, req.Token)
	if err != nil {
		writeUpstreamError(ctx, w, err, "Failed to get user info")
		return
	}

	writeJSON(ctx, w, http.StatusOK, &model.ProxyResponse{Success: true, User: identity})
}
