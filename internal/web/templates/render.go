// Package templates holds the HTML components of the web UI.
package templates

import (
	"io"

	"github.com/a-h/templ"
)

// html writes markup and stops at the first write error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) element(tag, class, content string) {
	h.raw("<" + tag)
	if class != "" {
		h.raw(` class="` + templ.EscapeString(class) + `"`)
	}
	h.raw(">")
	h.text(content)
	h.raw("</" + tag + ">")
}
