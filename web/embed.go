// Package web holds the HTML templates and static assets of the quote form.
package web

import "embed"

//go:embed templates static
var FS embed.FS
