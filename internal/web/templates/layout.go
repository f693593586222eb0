package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2933}
table{border-collapse:collapse;margin:1rem 0}th,td{border:1px solid #cbd2d9;padding:.3rem .6rem;text-align:left}
th{background:#f5f7fa}.errors li{color:#b42318}.infos li{color:#52606d}.alert{border:1px solid #b42318;padding:1rem}
.meta{color:#52606d}code{background:#f5f7fa;padding:0 .2rem}`

// Layout wraps body in the page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.element("title", "", title+" · sheetload")
		h.raw("<style>" + styles + "</style></head><body>")
		h.raw(`<header><a href="/">sheetload</a></header><main>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw("</main></body></html>")
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="alert" role="alert">`)
		h.element("strong", "", message)
		if action != "" {
			h.element("p", "", action)
		}
		h.element("p", "meta", "Code: "+code)
		h.raw("</div>")
		return h.err
	})
}
