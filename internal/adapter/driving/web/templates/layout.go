// Package templates holds the templ components of the portfolio page.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>`)
		hw.text(title)
		hw.raw(`</title>`)
		hw.raw(`<link rel="stylesheet" href="/static/css/site.css">`)
		hw.raw(`</head><body>`)
		hw.render(ctx, body)
		hw.raw(`<script src="/static/js/images.js" defer></script>`)
		hw.raw(`<script src="/static/js/contact.js" defer></script>`)
		hw.raw(`<script src="/static/js/chat.js" defer></script>`)
		hw.raw(`</body></html>`)
		return hw.err
	})
}
