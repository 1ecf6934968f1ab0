// Package templates embeds the HTML templates and static assets served by
// the web package.
package templates

import "embed"

//go:embed *.html pages/*.html partials/*.html static/*
var FS embed.FS
