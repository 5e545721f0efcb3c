package ui

import "embed"

// Static embeds the landing page served at the root path. It is a plain
// HTML page for generating and checking keys by hand, not a built frontend.
//
//go:embed static
var Static embed.FS
