package web

import "embed"

// StaticFS holds the embedded static assets (CSS, scripts, default project images).
//
//go:embed static
var StaticFS embed.FS
