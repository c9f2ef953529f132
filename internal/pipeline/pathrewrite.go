package pipeline

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteRelativeURLs prefixes relative img[src] and a[href] references with
// base, so a body rendered away from its source directory (the preview
// server) still resolves local images and linked files. An empty base
// returns the fragment unchanged.
//
// Absolute paths, URLs with a scheme, protocol-relative URLs, anchors and
// references escaping the source root ("../") are left as written.
func RewriteRelativeURLs(fragment, base string) (string, error) {
	if base == "" || !strings.Contains(fragment, "=") {
		return fragment, nil
	}

	doc, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}

	changed := false
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		var key string
		switch n.DataAtom {
		case atom.Img:
			key = "src"
		case atom.A:
			key = "href"
		default:
			return true
		}
		if rewritten, ok := rebase(attr(n, key), base); ok {
			setAttr(n, key, rewritten)
			changed = true
		}
		return true
	})

	if !changed {
		return fragment, nil
	}
	return renderFragment(doc)
}

// rebase joins a relative reference onto base. It reports false when ref
// should be left alone.
func rebase(ref, base string) (string, bool) {
	if !isRelativeRef(ref) {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil || u.Path == "" {
		return "", false
	}

	cleaned := path.Clean("/" + u.Path)
	if strings.HasPrefix(path.Clean(u.Path), "..") {
		return "", false
	}

	u.Path = strings.TrimSuffix(base, "/") + cleaned
	return u.String(), true
}

// isRelativeRef reports whether ref is a path relative to the document.
func isRelativeRef(ref string) bool {
	switch {
	case ref == "",
		strings.HasPrefix(ref, "#"),
		strings.HasPrefix(ref, "/"),
		strings.HasPrefix(ref, `\`):
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
