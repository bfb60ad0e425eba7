// Package repwatch carries build-time embedded assets for the server binary.
package repwatch

import "embed"

// WebFS holds the built dashboard frontend.
//
//go:embed web/dist
var WebFS embed.FS
