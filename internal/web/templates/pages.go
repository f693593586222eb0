package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// SchemaData describes one registered schema on the index page.
type SchemaData struct {
	Key        string
	Label      string
	SheetName  string
	HeaderRows int
	Columns    []string
}

// Index lists the schemas with an upload form for each.
func Index(schemas []SchemaData, languages []string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.element("h1", "", "Load a spreadsheet")
		if len(schemas) == 0 {
			h.element("p", "meta", "No schemas registered.")
		}
		for _, s := range schemas {
			h.raw("<section>")
			h.element("h2", "", s.Label)
			h.raw(`<p class="meta">Sheet <code>`)
			h.text(s.SheetName)
			h.raw("</code>, ")
			h.text(strconv.Itoa(s.HeaderRows))
			h.raw(" header row(s). Columns: ")
			for i, c := range s.Columns {
				if i > 0 {
					h.raw(", ")
				}
				h.element("code", "", c)
			}
			h.raw("</p>")
			h.raw(`<form method="post" enctype="multipart/form-data" action="/load/` + templ.EscapeString(s.Key) + `">`)
			h.raw(`<input type="file" name="file" accept=".xlsx,.xlsm,.csv" required> `)
			h.raw(`<select name="language">`)
			for _, l := range languages {
				h.raw(`<option value="` + templ.EscapeString(l) + `">`)
				h.text(l)
				h.raw("</option>")
			}
			h.raw(`</select> <button type="submit">Load</button></form></section>`)
		}
		return h.err
	})
	return Layout("Schemas", body)
}

// ResultData is a finished load prepared for display.
type ResultData struct {
	ID        string
	Schema    string
	SheetName string
	Filename  string
	Language  string
	Duration  string
	Persisted bool
	Columns   []string
	Rows      [][]string
	Errors    []string
	Infos     []string
}

// Result renders a load's messages and accepted rows.
func Result(d ResultData) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.element("h1", "", d.Filename)
		h.raw(`<p class="meta">`)
		h.text("Schema " + d.Schema + ", sheet " + d.SheetName + ", language " + d.Language + ", " + d.Duration)
		if d.Persisted {
			h.text(", saved")
		}
		h.raw("<br>Load ID <code>")
		h.text(d.ID)
		h.raw("</code></p>")

		messageList(h, "errors", "Errors", d.Errors)
		messageList(h, "infos", "Notes", d.Infos)

		h.element("h2", "", strconv.Itoa(len(d.Rows))+" row(s)")
		if len(d.Rows) == 0 {
			return h.err
		}
		h.raw("<table><thead><tr>")
		for _, c := range d.Columns {
			h.element("th", "", c)
		}
		h.raw("</tr></thead><tbody>")
		for _, row := range d.Rows {
			h.raw("<tr>")
			for _, cell := range row {
				h.element("td", "", cell)
			}
			h.raw("</tr>")
		}
		h.raw("</tbody></table>")
		return h.err
	})
	return Layout(d.Filename, body)
}

func messageList(h *html, class, title string, msgs []string) {
	if len(msgs) == 0 {
		return
	}
	h.element("h2", "", title)
	h.raw(`<ul class="` + class + `">`)
	for _, m := range msgs {
		h.element("li", "", m)
	}
	h.raw("</ul>")
}
