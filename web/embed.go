// Package web holds the embedded page templates and static assets.
package web

import "embed"

// TemplatesFS holds the base layout and one file per page.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
