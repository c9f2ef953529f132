package server

import "html/template"

type shellData struct {
	Title string
}

// shellTemplate is the browser page that follows the preview. Frames
// replace the view wholesale; older generations are ignored.
var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { margin: 0; }
#preview-status { position: fixed; right: 0.75rem; bottom: 0.75rem; z-index: 100;
  padding: 0.25rem 0.6rem; border-radius: 4px; font: 12px/1.4 system-ui, sans-serif;
  background: rgba(15, 23, 42, 0.8); color: #f8fafc; }
#preview-status[data-state="error"] { background: #b91c1c; }
#preview-status a { color: inherit; margin-left: 0.5rem; }
</style>
</head>
<body>
<div id="preview-view"></div>
<div id="preview-status" data-state="connecting">connecting<a href="/export">export</a></div>
<script>
(function () {
  var view = document.getElementById("preview-view");
  var status = document.getElementById("preview-status");
  var shown = 0;

  function setStatus(text, state) {
    status.dataset.state = state;
    status.firstChild.textContent = text;
  }

  function showFrame(f) {
    if (f.generation < shown) return;
    shown = f.generation;
    if (f.error) {
      setStatus("render failed: " + f.error, "error");
      return;
    }
    var y = window.scrollY;
    view.innerHTML = f.html;
    window.scrollTo(0, y);
    var text = "generation " + f.generation;
    if (f.diagrams) text += ", " + f.diagrams + " diagrams";
    if (f.failedDiagrams) text += " (" + f.failedDiagrams + " failed)";
    setStatus(text, f.failedDiagrams ? "warn" : "ok");
  }

  function connect() {
    var scheme = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(scheme + location.host + "/ws");
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === "hello") shown = 0;
      else if (msg.type === "frame") showFrame(msg.frame);
      else if (msg.type === "error") setStatus(msg.error, "error");
    };
    ws.onclose = function () {
      setStatus("disconnected, retrying", "error");
      setTimeout(connect, 1000);
    };
  }

  connect();
})();
</script>
</body>
</html>
`))
