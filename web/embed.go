// Package web holds the embedded dashboard frontend: a single page that
// consumes the JSON API under /api and the WebSocket load:state channel.
// cmd/web hands Files to the application so one binary serves both the
// API and the page.
package web

import "embed"

// Files contains the frontend assets rooted at this directory.
//
//go:embed index.html app.js style.css
var Files embed.FS
