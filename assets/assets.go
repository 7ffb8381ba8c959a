// Package assets embeds the LaTeX document templates.
package assets

import "embed"

// Templates holds template_<kind>.tex files
//
//go:embed template_*.tex
var Templates embed.FS
