// Package project models moderator-registered pixel-art projects and the
// repository that persists them.
package project

import "github.com/itsdrike/rickchurch-go/internal/pixel"

// Project is a sub-image anchored at (X, Y) that the scheduler tries to
// render onto the canvas. It is immutable for the lifetime of a refresh
// cycle; moderator writes take effect at the next refresh.
type Project struct {
	Name     string
	X, Y     int
	Priority int
	Image    *pixel.Grid
}

// Details is the wire-level view of a project (image as base64, matching
// the ProjectDetails JSON shape from the external interface).
type Details struct {
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Priority int    `json:"priority"`
	Image    string `json:"image"`
}
