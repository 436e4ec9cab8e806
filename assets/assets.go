package assets

import "embed"

//go:embed "migrations" "templates"
var EmbeddedFiles embed.FS
