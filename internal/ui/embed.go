package ui

import "embed"

// Dist embeds the compiled frontend assets from ui/dist/.
// When the dist directory holds only the placeholder shell (development),
// the server serves that instead of a built SPA.
//
//go:embed all:dist
var Dist embed.FS
