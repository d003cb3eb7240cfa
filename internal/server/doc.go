// Package server exposes markdown-and-math rendering over HTTP.
//
// The service renders message bodies for chat frontends:
//
//	POST /api/render  {"markdown": "..."}  ->  {"html": "..."}
//	GET  /healthz
package server
