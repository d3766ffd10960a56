package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/secmon-lab/checkin/pkg/utils/errutil"
	"github.com/secmon-lab/checkin/pkg/utils/safe"
)

// callbackTemplate is the OAuth redirect target. With an opener it relays the
// result to the opener restricted to its own origin and closes itself.
// Without one it redeems the code through the proxy, stores the token in
// localStorage "settings" and returns to the app.
var callbackTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>body{font-family:sans-serif;display:flex;align-items:center;justify-content:center;min-height:100vh;margin:0}</style>
</head>
<body>
<p id="status">{{.Title}}</p>
<script>
(function () {
  var params = new URLSearchParams(window.location.search);
  var code = params.get("code");
  var error = params.get("error");
  var state = params.get("state");
  var origin = window.location.origin;

  if (window.opener && !window.opener.closed) {
    var msg;
    if (error) {
      msg = { kind: "error", error: error, state: state };
    } else if (code) {
      msg = { kind: "success", code: code, state: state };
    } else {
      msg = { kind: "error", error: "missing_code", state: state };
    }
    window.opener.postMessage(msg, origin);
    window.close();
    return;
  }

  var fail = function (reason) {
    window.location.replace("/?slack_error=" + encodeURIComponent(reason));
  };
  if (error) {
    fail(error);
    return;
  }
  if (!code) {
    fail("missing_code");
    return;
  }

  fetch("/api/slack/oauth", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({ code: code, redirectUri: origin + "/slack/callback" })
  })
    .then(function (res) { return res.json(); })
    .then(function (data) {
      if (!data.success) {
        throw new Error(data.error || "oauth_failed");
      }
      var settings = {};
      try {
        settings = JSON.parse(window.localStorage.getItem("settings")) || {};
      } catch (e) {}
      settings.slackAccessToken = data.token;
      settings.slackUserId = data.userId;
      settings.slackTeamId = data.teamId;
      settings.slackTeamName = data.teamName;
      window.localStorage.setItem("settings", JSON.stringify(settings));
      window.location.replace("/?slack=connected");
    })
    .catch(function (e) { fail(e.message); });
})();
</script>
</body>
</html>
`))

type callbackPage struct {
	Title string
}

func callbackHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := callbackTemplate.Execute(&buf, callbackPage{Title: "Connecting to Slack..."}); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")
	safe.Write(r.Context(), w, buf.Bytes())
}
