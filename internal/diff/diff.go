// Package diff computes the set of pixels that still disagree with project
// targets against a canvas snapshot.
package diff

import (
	"sort"

	"github.com/itsdrike/rickchurch-go/internal/canvasclient"
	"github.com/itsdrike/rickchurch-go/internal/pixel"
	"github.com/itsdrike/rickchurch-go/internal/project"
)

// Unit is one pixel that must change from its current canvas color to a
// project's target color. Identity is (Coord, RGB): two units with the
// same coordinates and target color are the same unit.
type Unit struct {
	Coord   pixel.Coord
	RGB     pixel.RGB
	Project string
}

// ComputeUnits derives the open work units for a set of projects against a
// canvas snapshot.
//
// Projects are processed in ascending (priority, name) order so that when
// two projects target the same pixel with different colors, the
// later-processed (higher priority) project's unit is the one inserted
// last into the result for that (x, y) — see DESIGN.md for the chosen
// overlap policy. Units are deduplicated by identity (Coord, RGB); two
// projects that agree on both coordinate and target color collapse into a
// single unit, while disagreement over the target color leaves both units
// in the set as distinct candidates.
func ComputeUnits(projects []project.Project, snapshot *canvasclient.Snapshot) map[Unit]struct{} {
	ordered := make([]project.Project, len(projects))
	copy(ordered, projects)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].Name < ordered[j].Name
	})

	type identity struct {
		Coord pixel.Coord
		RGB   pixel.RGB
	}

	byIdentity := make(map[identity]Unit)
	for _, p := range ordered {
		if p.Image == nil {
			continue
		}
		for j := 0; j < p.Image.Height; j++ {
			for i := 0; i < p.Image.Width; i++ {
				x, y := p.X+i, p.Y+j
				if x < 0 || y < 0 || x >= snapshot.Width || y >= snapshot.Height {
					continue
				}
				target := p.Image.At(i, j)
				if snapshot.At(x, y) == target {
					continue
				}
				id := identity{Coord: pixel.Coord{X: x, Y: y}, RGB: target}
				byIdentity[id] = Unit{Coord: id.Coord, RGB: id.RGB, Project: p.Name}
			}
		}
	}

	units := make(map[Unit]struct{}, len(byIdentity))
	for _, u := range byIdentity {
		units[u] = struct{}{}
	}
	return units
}
