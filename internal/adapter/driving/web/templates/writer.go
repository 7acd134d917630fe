package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter emits markup and keeps the first write error, so components can
// be written as straight-line code and return hw.err once at the end.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

// text writes s HTML-escaped.
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// url writes an attribute holding a sanitized URL. Unsafe schemes such as
// javascript: are replaced by templ's failure URL.
func (hw *htmlWriter) url(name, u string) {
	hw.attr(name, string(templ.URL(u)))
}

func (hw *htmlWriter) render(ctx context.Context, c templ.Component) {
	if hw.err == nil && c != nil {
		hw.err = c.Render(ctx, hw.w)
	}
}
