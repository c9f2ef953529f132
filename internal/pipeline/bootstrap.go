package pipeline

import (
	"encoding/json"
	"fmt"
)

// MermaidScriptURL is the diagram library loaded by exported documents and
// by the headless diagram renderer.
const MermaidScriptURL = "https://cdn.jsdelivr.net/npm/mermaid@10.9.1/dist/mermaid.min.js"

// outlineElementID is the navigation container filled at load time.
const outlineElementID = "doc-outline"

// OutlineBootstrap fills the navigation container of an exported document
// from the headings of its body. Ids follow the same sequence the server
// assigns, so links written before and after load agree.
const OutlineBootstrap = `(function () {
  var nav = document.getElementById("` + outlineElementID + `");
  var body = document.getElementById("` + BodyElementID + `");
  if (!nav || !body) { return; }
  var headings = body.querySelectorAll("h1, h2, h3");
  if (headings.length < 2) {
    nav.parentNode.removeChild(nav);
    return;
  }
  var list = document.createElement("ul");
  for (var i = 0; i < headings.length; i++) {
    var h = headings[i];
    var id = "` + headingIDPrefix + `" + (i + 1);
    h.id = id;
    var item = document.createElement("li");
    item.className = "` + outlineLevelClass + `" + h.tagName.charAt(1);
    var link = document.createElement("a");
    link.href = "#" + id;
    link.textContent = h.textContent.replace(/\s+/g, " ").trim();
    item.appendChild(link);
    list.appendChild(item);
  }
  nav.appendChild(list);
  nav.hidden = false;
})();
`

// diagramBootstrapTemplate performs the diagram replacement of an exported
// document once, at load. %s is the JSON configuration object.
const diagramBootstrapTemplate = `var staticmdDiagrams = (function () {
  var config = %s;

  function stripEmphasis(src) {
    src = src.replace(/\*\*([^* \t\n\f\r](?:[^*\n]*[^* \t\n\f\r])?)\*\*/g, "$1");
    src = src.replace(/\*([^* \t\n\f\r](?:[^*\n]*[^* \t\n\f\r])?)\*/g, "$1");
    for (var i = 0; i < 8; i++) {
      var next = src.replace(/(^|\W)_([^_ \t\n\f\r](?:[^_\n]*[^_ \t\n\f\r])?)_(\W|$)/g, "$1$2$3");
      if (next === src) { break; }
      src = next;
    }
    return src;
  }

  function renderOne(mermaid, doc, code, id) {
    var pre = code.parentNode;
    var source = stripEmphasis(code.textContent);
    return Promise.resolve()
      .then(function () { return mermaid.render(id, source); })
      .then(function (out) {
        var wrapper = doc.createElement("div");
        wrapper.className = "` + DiagramClass + `";
        wrapper.setAttribute("` + diagramIDAttr + `", id);
        wrapper.setAttribute("style", "max-width:100%%;overflow-x:auto");
        wrapper.innerHTML = out.svg;
        pre.parentNode.replaceChild(wrapper, pre);
      }, function (err) {
        var msg = "diagram rendering failed: " + (err && err.message ? err.message : String(err));
        pre.className = (pre.className ? pre.className + " " : "") + "` + DiagramErrorClass + `";
        pre.setAttribute("` + diagramErrorAttr + `", msg);
        pre.setAttribute("title", msg);
      });
  }

  function run(mermaid, doc) {
    if (!mermaid || !doc) { return Promise.resolve(); }
    mermaid.initialize({
      startOnLoad: false,
      theme: config.palette,
      fontFamily: config.fontFamily,
      securityLevel: "strict"
    });
    var blocks = doc.querySelectorAll("#` + BodyElementID + ` pre > code.` + diagramCodeClass + `");
    var jobs = [];
    for (var i = 0; i < blocks.length; i++) {
      jobs.push(renderOne(mermaid, doc, blocks[i], config.idPrefix + "-" + (i + 1)));
    }
    return Promise.all(jobs);
  }

  return { config: config, stripEmphasis: stripEmphasis, run: run };
})();
if (typeof window !== "undefined") {
  window.addEventListener("load", function () { staticmdDiagrams.run(window.mermaid, document); });
}
`

// diagramBootstrapConfig is serialized into the diagram bootstrap.
type diagramBootstrapConfig struct {
	Palette    string `json:"palette"`
	FontFamily string `json:"fontFamily"`
	IDPrefix   string `json:"idPrefix"`
}

// DiagramBootstrap returns the load-time diagram script for cfg.
// json.Marshal escapes <, > and &, so the literal is safe inside <script>.
func DiagramBootstrap(cfg DiagramConfig, idPrefix string) (string, error) {
	data, err := json.Marshal(diagramBootstrapConfig{
		Palette:    cfg.Palette,
		FontFamily: cfg.FontFamily,
		IDPrefix:   idPrefix,
	})
	if err != nil {
		return "", fmt.Errorf("encoding diagram config: %w", err)
	}
	return fmt.Sprintf(diagramBootstrapTemplate, data), nil
}
