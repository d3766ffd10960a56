package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/utils/errutil"
	"github.com/secmon-lab/checkin/pkg/utils/safe"
)

// RelayPoster accepts a callback result. It returns false when nobody is
// waiting for it anymore.
type RelayPoster interface {
	Post(msg *model.RelayMessage) bool
}

var relayTemplate = template.Must(template.New("relay").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>checkin</title></head>
<body style="font-family:sans-serif;text-align:center;margin-top:20vh">
<p>{{.Message}}</p>
<script>setTimeout(function () { window.close(); }, 1500);</script>
</body>
</html>
`))

type relayPage struct {
	Message string
}

// NewRelayHandler serves /slack/callback on the CLI's loopback listener and
// hands the result to poster, the same contract as the browser opener relay.
// Messages are stamped with origin, the configured redirect URI origin, never
// the request's Host header.
func NewRelayHandler(poster RelayPoster, origin string) http.Handler {
	r := chi.NewRouter()
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/slack/callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		msg := &model.RelayMessage{
			Origin: origin,
			State:  q.Get("state"),
		}
		switch {
		case q.Get("error") != "":
			msg.Kind = model.RelayKindError
			msg.Error = q.Get("error")
		case q.Get("code") != "":
			msg.Kind = model.RelayKindSuccess
			msg.Code = q.Get("code")
		default:
			msg.Kind = model.RelayKindError
			msg.Error = "missing_code"
		}

		page := relayPage{Message: "You can close this window and return to the terminal."}
		status := http.StatusOK
		if !poster.Post(msg) {
			page.Message = "This sign-in request is no longer active."
			status = http.StatusGone
		}

		var buf bytes.Buffer
		if err := relayTemplate.Execute(&buf, page); err != nil {
			errutil.HandleHTTP(req.Context(), w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		safe.Write(req.Context(), w, buf.Bytes())
	})

	return r
}
